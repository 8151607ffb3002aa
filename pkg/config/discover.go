package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProjectFileName is the per-directory config file looked up from the
// working directory upwards.
const ProjectFileName = ".prsconf.yaml"

// Discover finds the configuration file to load. An explicit path must
// exist. Otherwise the nearest .prsconf.yaml from the working directory up
// to the home directory wins, then the user config file. An empty result
// means built-in defaults.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		path := expandHome(explicit)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	if dir, err := os.Getwd(); err == nil {
		if path, ok := findProjectFile(dir); ok {
			return path, nil
		}
	}
	user := UserConfigPath()
	if info, err := os.Stat(user); err == nil && !info.IsDir() {
		return user, nil
	}
	return "", nil
}

// UserConfigPath is $XDG_CONFIG_HOME/prsconf/config.yaml, falling back to
// ~/.config.
func UserConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "prsconf", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "prsconf", "config.yaml")
	}
	return filepath.Join(home, ".config", "prsconf", "config.yaml")
}

// findProjectFile walks up from dir looking for .prsconf.yaml.
func findProjectFile(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
