package plugindomain

import (
	"fmt"
	"slices"
)

// SourceKind tells where a plugin's files come from
type SourceKind string

const (
	SourceGit   SourceKind = "git"
	SourceURL   SourceKind = "url"
	SourceLocal SourceKind = "local"
)

// DefaultLoadPatterns is used when a plugin declares no load patterns
var DefaultLoadPatterns = []string{"*.plugin.zsh"}

// ParseSourceKind converts a configuration value into a SourceKind.
// An empty value means git.
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(s) {
	case "", SourceGit:
		return SourceGit, nil
	case SourceURL:
		return SourceURL, nil
	case SourceLocal:
		return SourceLocal, nil
	default:
		return "", fmt.Errorf("unknown plugin source %q (expected git, url or local)", s)
	}
}

// String returns the configuration spelling of the kind
func (k SourceKind) String() string {
	return string(k)
}

// IsManaged reports whether plugins of this kind live in the storage root
func (k SourceKind) IsManaged() bool {
	return k != SourceLocal
}

// Spec is one declared plugin. Only From, Name and Build take part in
// installation; everything else is carried through to the script generator.
type Spec struct {
	When       string     `json:"when,omitempty"`
	From       SourceKind `json:"from"`
	Name       string     `json:"name"`
	Build      string     `json:"build,omitempty"`
	BeforeLoad string     `json:"before_load,omitempty"`
	AfterLoad  string     `json:"after_load,omitempty"`
	Load       []string   `json:"load,omitempty"`
	Ignore     []string   `json:"ignore,omitempty"`
	Path       []string   `json:"path,omitempty"`
	FPath      []string   `json:"fpath,omitempty"`
	ManPath    []string   `json:"manpath,omitempty"`
}

// IsLocal reports whether the plugin is an unmanaged directory on disk
func (s Spec) IsLocal() bool {
	return s.From == SourceLocal
}

// LoadPatterns returns the declared load patterns or the defaults
func (s Spec) LoadPatterns() []string {
	if len(s.Load) == 0 {
		return slices.Clone(DefaultLoadPatterns)
	}
	return s.Load
}

// String identifies the plugin in log lines
func (s Spec) String() string {
	return fmt.Sprintf("%q from %s", s.Name, s.From)
}
