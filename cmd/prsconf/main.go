// Command prsconf is a terminal configuration console for the
// objects/tags/alerts/methods hierarchy served by the prs REST API.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/prsconf/pkg/api"
	"github.com/vanderheijden86/prsconf/pkg/config"
	"github.com/vanderheijden86/prsconf/pkg/journal"
	"github.com/vanderheijden86/prsconf/pkg/ui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// reloadDebounce coalesces editor save bursts on the config file.
const reloadDebounce = 200 * time.Millisecond

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFiles   []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:          "prsconf",
		Short:        "Browse and edit the prs configuration hierarchy",
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(flags)
		},
	}
	cmd.SetVersionTemplate("prsconf {{.Version}}\n")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: nearest .prsconf.yaml, then the user config)")
	cmd.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", []string{".env"}, ".env files to load before reading PRSCONF_* variables")

	cmd.AddCommand(
		newSetupCmd(flags),
		newHistoryCmd(flags),
		newExportCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig loads .env files, finds the config file and reads it. The
// returned path is empty when built-in defaults are in use.
func loadConfig(flags *globalFlags) (config.Config, string, error) {
	if _, err := config.LoadEnvFiles(flags.envFiles); err != nil {
		return config.Config{}, "", fmt.Errorf("loading env files: %w", err)
	}
	path, err := config.Discover(flags.configPath)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	return cfg, path, nil
}

func newClient(cfg config.Config, log logrus.FieldLogger) (*api.Client, error) {
	return api.New(cfg.BaseURL(), api.WithLogger(log), api.WithTimeout(cfg.API.Timeout))
}

func runConsole(flags *globalFlags) error {
	if err := requireTerminal(os.Stdin, os.Stdout); err != nil {
		return err
	}
	cfg, path, err := loadConfig(flags)
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

	var recorder ui.Recorder
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			log.WithError(err).WithField("path", cfg.Journal.Path).Warn("change journal unavailable")
		} else {
			defer j.Close()
			recorder = j
		}
	}

	log.WithFields(logrus.Fields{
		"version": version,
		"api":     cfg.BaseURL(),
		"profile": cfg.API.Profile,
		"config":  path,
	}).Info("starting console")

	m := ui.NewModel(ui.Options{
		Config:   cfg,
		Backend:  client,
		Recorder: recorder,
		Logger:   log,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	reloader, err := ui.NewConfigReloader(ui.ReloaderConfig{
		Path:     path,
		Sender:   p,
		Logger:   log,
		Debounce: reloadDebounce,
	})
	if err != nil {
		log.WithError(err).Warn("config hot reload disabled")
	} else {
		if err := reloader.Start(); err != nil {
			log.WithError(err).Warn("config hot reload disabled")
		}
		defer reloader.Stop()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "prsconf %s\n", version)
		},
	}
}
