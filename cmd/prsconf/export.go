package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/prsconf/pkg/api"
	"github.com/vanderheijden86/prsconf/pkg/export"
	"github.com/vanderheijden86/prsconf/pkg/model"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	var (
		format      string
		output      string
		title       string
		depth       int
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "export [objects|tags|connectors|schedules|<collection>/<id>]",
		Short: "Dump a subtree of the hierarchy as Markdown, JSON or YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			log, closeLog, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog()
			client, err := newClient(cfg, log)
			if err != nil {
				return err
			}

			target := "objects"
			if len(args) == 1 {
				target = args[0]
			}
			root, err := resolveExportRoot(cmd.Context(), client, target)
			if err != nil {
				return err
			}
			if err := export.Walk(cmd.Context(), client, root, export.Options{MaxDepth: depth, Concurrency: concurrency}); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"root": root.ID, "format": string(f), "output": output}).Info("exported subtree")
			if output == "" || output == "-" {
				return export.Write(cmd.OutOrStdout(), root, f, title, time.Now())
			}
			return export.WriteFile(output, root, f, title, time.Now())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "Output format: md, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVar(&title, "title", "", "Report title for Markdown (default: the root's name)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Stop after this many levels (0 = all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Parallel listing requests")
	return cmd
}

// entityGetter reads a single entity.
type entityGetter interface {
	Get(ctx context.Context, collection string, q api.Query) (model.Entity, error)
}

// resolveExportRoot turns a root id or collection/id pair into the node the
// walk starts from.
func resolveExportRoot(ctx context.Context, g entityGetter, target string) (*export.Node, error) {
	if model.IsRootID(target) {
		return export.RootNode(target)
	}
	collection, id, ok := strings.Cut(target, "/")
	if !ok || id == "" {
		return nil, fmt.Errorf("export target %q: want a root or <collection>/<id>", target)
	}
	kind, ok := model.ParseCollection(collection)
	if !ok {
		return nil, fmt.Errorf("export target %q: unknown collection %q", target, collection)
	}
	e, err := g.Get(ctx, collection, api.LabelQuery(id))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	label := e.Label()
	if label == "" {
		label = id
	}
	return export.EntityNode(id, kind, label), nil
}
