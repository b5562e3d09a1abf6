package fetch

import (
	"context"
	"fmt"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
	pluginports "github.com/zshrug/zshrug/internal/core/ports/plugin"
)

// Dispatcher routes a fetch to the fetcher for the plugin's source kind.
// The set of kinds is closed: git, url, and local (which is never fetched).
type Dispatcher struct {
	git pluginports.Fetcher
	url pluginports.Fetcher
}

// NewDispatcher creates a dispatcher over the git and url fetchers
func NewDispatcher(git, url pluginports.Fetcher) *Dispatcher {
	return &Dispatcher{git: git, url: url}
}

// Fetch implements pluginports.Fetcher
func (d *Dispatcher) Fetch(ctx context.Context, spec plugindomain.Spec, dir string) error {
	switch spec.From {
	case plugindomain.SourceGit, "":
		return d.git.Fetch(ctx, spec, dir)
	case plugindomain.SourceURL:
		return d.url.Fetch(ctx, spec, dir)
	case plugindomain.SourceLocal:
		return fmt.Errorf("plugin %s: %w", spec, ErrLocalSource)
	default:
		return fmt.Errorf("plugin %s: %w", spec, ErrUnknownSource)
	}
}

var _ pluginports.Fetcher = (*Dispatcher)(nil)
