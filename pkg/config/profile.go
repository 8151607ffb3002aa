package config

import (
	"runtime"
	"sort"
)

const (
	ProfileStandalone = "standalone"
	ProfileGrafana    = "grafana"
)

// Profile captures the differences between the standalone console and the
// one embedded in a Grafana app page.
type Profile struct {
	Name string
	// APIPrefix is inserted between the host and /v1.
	APIPrefix string
	// SplitBanners reports create/delete results in the tree pane and
	// update results in the detail pane instead of one shared banner.
	SplitBanners bool
	// TagData enables reading and writing tag values.
	TagData bool
	// StructuredConfig edits alert and schedule configuration as discrete
	// fields rather than raw JSON.
	StructuredConfig bool
}

var profiles = map[string]Profile{
	ProfileStandalone: {
		Name:             ProfileStandalone,
		TagData:          true,
		StructuredConfig: true,
	},
	ProfileGrafana: {
		Name:         ProfileGrafana,
		SplitBanners: true,
	},
}

// LookupProfile returns a profile by name.
func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// ProfileNames lists known profiles alphabetically.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func defaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	}
	return "xdg-open"
}
