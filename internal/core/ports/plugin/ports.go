package pluginports

import (
	"context"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
)

// StateStore is the durable record of install states.
// Get may be called without holding the lock; Set and Delete may not.
type StateStore interface {
	// Get returns the state of a plugin, StateNotDownloaded when unknown
	Get(id plugindomain.ID) (plugindomain.InstallState, error)

	// Set persists the complete mapping with id updated to state
	Set(id plugindomain.ID, state plugindomain.InstallState) error

	// Delete drops entries and persists the remaining mapping
	Delete(ids ...plugindomain.ID) error

	// Entries returns a copy of the whole mapping
	Entries() (map[plugindomain.ID]plugindomain.InstallState, error)
}

// Guard is a held lock
type Guard interface {
	Release() error
}

// Locker serializes installation work across processes
type Locker interface {
	Acquire() (Guard, error)
}

// DirResolver maps a plugin to its directory on disk
type DirResolver interface {
	PluginDir(spec plugindomain.Spec) string
}

// Fetcher retrieves a plugin's files into an empty directory
type Fetcher interface {
	Fetch(ctx context.Context, spec plugindomain.Spec, dir string) error
}

// BuildRunner runs a plugin's build command inside its directory
type BuildRunner interface {
	Run(ctx context.Context, command, dir string) error
}
