package slotwatch

import (
	"github.com/hazyhaar/slotwatch/slotwatch/internal/config"
	"github.com/hazyhaar/slotwatch/slotwatch/internal/page"
)

// CheckConfig is a loaded profile. Re-exported from internal.
type CheckConfig = config.CheckConfig

// Selection is one (field, visible text) pair.
type Selection = config.Selection

// ConfigError reports a missing or invalid profile, or an option text the
// page does not offer.
type ConfigError = config.ConfigError

// PageStructureError reports that the page no longer matches the expected
// structure.
type PageStructureError = page.StructureError

// Reading is the classified availability element.
type Reading = page.Reading

// State is Available or Unavailable.
type State = page.State

const (
	Unavailable = page.Unavailable
	Available   = page.Available
)

// LoadProfile reads the profile key from a YAML configuration file.
func LoadProfile(path, key string) (*CheckConfig, error) {
	return config.LoadProfile(path, key)
}

// Classify reads the availability element out of a page's HTML.
func Classify(html, resultSelector string, indicators []string) (Reading, error) {
	return page.Classify(html, resultSelector, indicators)
}

// DefaultConfigPath is the profile file read when none is given.
const DefaultConfigPath = config.DefaultPath

// ResolveConfigPath picks the profile file: the explicit path, else
// config.yaml in the working directory, else the XDG config directories.
func ResolveConfigPath(p string, explicit bool) string {
	return config.ResolvePath(p, explicit)
}

// ProfileNames lists the profile keys of a configuration file.
func ProfileNames(path string) ([]string, error) {
	return config.ProfileNames(path)
}
