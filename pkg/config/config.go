// Package config loads prsconf settings from a YAML file, .env files and
// PRSCONF_* environment variables, in that order of increasing precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "PRSCONF_"

// Config is the complete prsconf configuration.
type Config struct {
	API     APIConfig     `yaml:"api" envPrefix:"API_"`
	Banner  BannerConfig  `yaml:"banner" envPrefix:"BANNER_"`
	Tree    TreeConfig    `yaml:"tree" envPrefix:"TREE_"`
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Journal JournalConfig `yaml:"journal" envPrefix:"JOURNAL_"`

	// path is the file the config was read from, empty for defaults.
	path string
}

// APIConfig locates the backend.
type APIConfig struct {
	// URL is scheme://host[:port] of the backend, without /v1.
	URL string `yaml:"url" env:"URL"`
	// Profile selects the console variant: "standalone" or "grafana".
	Profile string `yaml:"profile" env:"PROFILE"`
	// Prefix overrides the profile's path prefix.
	Prefix *string `yaml:"prefix,omitempty" env:"PREFIX"`
	// Timeout bounds each request; zero disables it.
	Timeout time.Duration `yaml:"timeout,omitempty" env:"TIMEOUT"`
}

// BannerConfig controls transient status messages.
type BannerConfig struct {
	Duration time.Duration `yaml:"duration" env:"DURATION"`
}

// TreeConfig controls tree rendering.
type TreeConfig struct {
	ExpandIcon          string `yaml:"expand_icon" env:"EXPAND_ICON"`
	CollapseIcon        string `yaml:"collapse_icon" env:"COLLAPSE_ICON"`
	LeafIcon            string `yaml:"leaf_icon" env:"LEAF_ICON"`
	BaseIndent          int    `yaml:"base_indent" env:"BASE_INDENT"`
	IndentUnit          int    `yaml:"indent_unit" env:"INDENT_UNIT"`
	OpenLinksExternally bool   `yaml:"open_links_externally" env:"OPEN_LINKS_EXTERNALLY"`
	// Opener is the command links are handed to, e.g. "xdg-open".
	Opener string `yaml:"opener,omitempty" env:"OPENER"`
}

// LogConfig controls the JSON log file.
type LogConfig struct {
	File  string `yaml:"file" env:"FILE"`
	Level string `yaml:"level" env:"LEVEL"`
}

// JournalConfig locates the change journal database.
type JournalConfig struct {
	Path    string `yaml:"path" env:"PATH"`
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			URL:     "http://localhost",
			Profile: ProfileStandalone,
		},
		Banner: BannerConfig{Duration: 5 * time.Second},
		Tree: TreeConfig{
			ExpandIcon:   "▾",
			CollapseIcon: "▸",
			LeafIcon:     " ",
			BaseIndent:   1,
			IndentUnit:   2,
			Opener:       defaultOpener(),
		},
		Log: LogConfig{
			File:  filepath.Join(stateDir(), "prsconf.log"),
			Level: "info",
		},
		Journal: JournalConfig{
			Path:    filepath.Join(stateDir(), "journal.db"),
			Enabled: true,
		},
	}
}

// Path returns the file this configuration was read from.
func (c Config) Path() string { return c.path }

// Profile resolves the configured console variant, applying a prefix
// override when one is set.
func (c Config) Profile() Profile {
	p, _ := LookupProfile(c.API.Profile)
	if c.API.Prefix != nil {
		p.APIPrefix = *c.API.Prefix
	}
	return p
}

// BaseURL is the API URL including the profile prefix.
func (c Config) BaseURL() string {
	return strings.TrimRight(c.API.URL, "/") + c.Profile().APIPrefix
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil {
		return fmt.Errorf("api.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.url must be http or https, got %q", c.API.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.url %q has no host", c.API.URL)
	}
	if _, ok := LookupProfile(c.API.Profile); !ok {
		return fmt.Errorf("api.profile must be one of %s, got %q", strings.Join(ProfileNames(), ", "), c.API.Profile)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be non-negative, got %s", c.API.Timeout)
	}
	if c.Banner.Duration <= 0 {
		return fmt.Errorf("banner.duration must be positive, got %s", c.Banner.Duration)
	}
	if c.Tree.BaseIndent < 0 || c.Tree.IndentUnit < 0 {
		return fmt.Errorf("tree indents must be non-negative")
	}
	if c.Tree.OpenLinksExternally && c.Tree.Opener == "" {
		return fmt.Errorf("tree.opener is required when tree.open_links_externally is set")
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not a log level", c.Log.Level)
	}
	return nil
}

// LoadEnvFiles loads whichever of the given .env files exist and returns
// how many were read. Variables already set in the process win.
func LoadEnvFiles(files []string) (int, error) {
	var existing []string
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads the configuration from path (skipped when empty), then applies
// PRSCONF_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
		cfg.path = path
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "prsconf")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "prsconf")
	}
	return filepath.Join(home, ".local", "state", "prsconf")
}
