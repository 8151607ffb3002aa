package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/prsconf/pkg/journal"
)

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var (
		limit    int
		asJSON   bool
		entityID string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show changes recorded in the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return fmt.Errorf("the change journal is disabled (journal.enabled)")
			}
			j, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()

			var entries []journal.Entry
			if entityID != "" {
				entries, err = j.ForEntity(cmd.Context(), entityID)
			} else {
				entries, err = j.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeHistoryJSON(cmd.OutOrStdout(), entries)
			}
			writeHistoryTable(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	cmd.Flags().StringVar(&entityID, "id", "", "Only show changes to this entity")
	return cmd
}

func writeHistoryJSON(w io.Writer, entries []journal.Entry) error {
	if entries == nil {
		entries = []journal.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func writeHistoryTable(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No changes recorded.")
		return
	}
	failed := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("WHEN", "ACTION", "COLLECTION", "ID", "OUTCOME", "ERROR").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row >= 0 && row < len(entries) && entries[row].Outcome == journal.OutcomeError {
				return failed
			}
			return lipgloss.NewStyle()
		})
	for _, e := range entries {
		t.Row(
			e.At.Local().Format(time.DateTime),
			e.Action,
			e.Collection,
			e.EntityID,
			e.Outcome,
			runewidth.Truncate(e.Error, 48, "..."),
		)
	}
	fmt.Fprintln(w, t.String())
}
