package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/prsconf/pkg/config"
)

// setupAnswers holds what the setup wizard asks for, as text.
type setupAnswers struct {
	URL         string
	Profile     string
	Timeout     string
	Banner      string
	OpenLinks   bool
	Journal     bool
	JournalPath string
}

func answersFrom(cfg config.Config) setupAnswers {
	timeout := ""
	if cfg.API.Timeout > 0 {
		timeout = cfg.API.Timeout.String()
	}
	return setupAnswers{
		URL:         cfg.API.URL,
		Profile:     cfg.API.Profile,
		Timeout:     timeout,
		Banner:      cfg.Banner.Duration.String(),
		OpenLinks:   cfg.Tree.OpenLinksExternally,
		Journal:     cfg.Journal.Enabled,
		JournalPath: cfg.Journal.Path,
	}
}

// apply copies the answers onto cfg and validates the result.
func (a setupAnswers) apply(cfg config.Config) (config.Config, error) {
	cfg.API.URL = strings.TrimSpace(a.URL)
	cfg.API.Profile = a.Profile

	cfg.API.Timeout = 0
	if s := strings.TrimSpace(a.Timeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return config.Config{}, fmt.Errorf("request timeout: %w", err)
		}
		cfg.API.Timeout = d
	}
	d, err := time.ParseDuration(strings.TrimSpace(a.Banner))
	if err != nil {
		return config.Config{}, fmt.Errorf("banner duration: %w", err)
	}
	cfg.Banner.Duration = d

	cfg.Tree.OpenLinksExternally = a.OpenLinks
	cfg.Journal.Enabled = a.Journal
	if p := strings.TrimSpace(a.JournalPath); p != "" {
		cfg.Journal.Path = p
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func validDuration(optional bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" && optional {
			return nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return errors.New("use a duration such as 5s or 1m")
		}
		if d < 0 || (d == 0 && !optional) {
			return errors.New("must be positive")
		}
		return nil
	}
}

func setupForm(a *setupAnswers) *huh.Form {
	profiles := huh.NewOptions(config.ProfileNames()...)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API URL").
				Description("scheme://host[:port] of the backend, without /v1").
				Value(&a.URL).
				Validate(func(s string) error {
					candidate := config.Default()
					candidate.API.URL = strings.TrimSpace(s)
					return candidate.Validate()
				}),
			huh.NewSelect[string]().
				Title("Profile").
				Description("grafana splits status banners between the tree and the detail pane").
				Options(profiles...).
				Value(&a.Profile),
			huh.NewInput().
				Title("Request timeout").
				Description("Leave empty for none").
				Value(&a.Timeout).
				Validate(validDuration(true)),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Banner duration").
				Value(&a.Banner).
				Validate(validDuration(false)),
			huh.NewConfirm().
				Title("Open links with the system opener?").
				Value(&a.OpenLinks),
			huh.NewConfirm().
				Title("Keep a local change journal?").
				Value(&a.Journal),
			huh.NewInput().
				Title("Journal database").
				Value(&a.JournalPath),
		),
	).WithTheme(huh.ThemeCharm())
}

func newSetupCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Write a config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTerminal(os.Stdin, os.Stdout); err != nil {
				return err
			}
			if _, err := config.LoadEnvFiles(flags.envFiles); err != nil {
				return fmt.Errorf("loading env files: %w", err)
			}

			target := flags.configPath
			if target == "" {
				target = config.UserConfigPath()
			}
			cfg := config.Default()
			if _, err := os.Stat(target); err == nil {
				loaded, err := config.Load(target)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			answers := answersFrom(cfg)
			if err := setupForm(&answers).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled.")
					return nil
				}
				return err
			}
			cfg, err := answers.apply(cfg)
			if err != nil {
				return err
			}
			if err := config.Save(target, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}
}
