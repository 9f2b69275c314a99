package config

import (
	"sort"

	"github.com/spf13/viper"
)

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "streamlit"

// Profile is a named preset of launcher defaults. Each one reproduces one of
// the historical start-up script variants. Anything set explicitly in the
// config file, environment or flags still wins over the profile.
type Profile struct {
	Name              string
	DefaultPort       string
	Strict            bool
	Banner            bool
	ImportCheck       bool
	DisableUsageStats bool
	DisableCORS       bool
	DisableXSRF       bool
}

var profiles = map[string]Profile{
	"streamlit": {
		Name:              "streamlit",
		DefaultPort:       "8501",
		DisableUsageStats: true,
	},
	"railway": {
		Name:              "railway",
		DefaultPort:       "8080",
		Strict:            true,
		Banner:            true,
		DisableUsageStats: true,
	},
	"railway-debug": {
		Name:              "railway-debug",
		DefaultPort:       "8080",
		Strict:            true,
		Banner:            true,
		ImportCheck:       true,
		DisableUsageStats: true,
	},
	"proxy": {
		Name:              "proxy",
		DefaultPort:       "8501",
		Strict:            true,
		Banner:            true,
		DisableUsageStats: true,
		DisableCORS:       true,
		DisableXSRF:       true,
	},
	"minimal": {
		Name:        "minimal",
		DefaultPort: "8501",
	},
}

// LookupProfile returns the profile registered under name.
func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// ProfileNames returns the registered profile names in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// apply installs the profile as the default layer of v.
func (p Profile) apply(v *viper.Viper) {
	v.SetDefault("server.default_port", p.DefaultPort)
	v.SetDefault("server.disable_usage_stats", p.DisableUsageStats)
	v.SetDefault("server.disable_cors", p.DisableCORS)
	v.SetDefault("server.disable_xsrf", p.DisableXSRF)
	v.SetDefault("preflight.strict", p.Strict)
	v.SetDefault("preflight.banner", p.Banner)
	v.SetDefault("preflight.import_check", p.ImportCheck)
}
