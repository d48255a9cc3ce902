package config

import (
	"fmt"
	"strings"
)

// ConfigError reports a profile that cannot be used: unreadable or malformed
// file, unknown profile key, invalid profile, or an option text the live page
// does not offer. It is always fatal.
type ConfigError struct {
	Path    string
	Profile string
	Field   string
	Reason  string
	Err     error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Profile != "" {
		fmt.Fprintf(&b, " profile %q", e.Profile)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }
