package storage

import (
	"fmt"
	"os"
	"path/filepath"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
	"github.com/zshrug/zshrug/internal/infrastructure/logging"
)

// Layout names the files and directories kept under the storage root
type Layout struct {
	StateFile  string
	LockFile   string
	PluginsDir string
}

// DefaultLayout returns the on-disk names used by the CLI
func DefaultLayout() Layout {
	return Layout{
		StateFile:  "state.yaml",
		LockFile:   "lock",
		PluginsDir: "plugins",
	}
}

// Storage owns the storage root: plugin directories, the state file and the lock
type Storage struct {
	root   string
	layout Layout
	state  *StateFile
	lock   *Lock
}

// Init creates the storage root if needed and returns a Storage bound to it
func Init(root string, layout Layout, logger *logging.Logger) (*Storage, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("couldn't create storage directory '%s': %w", root, err)
	}

	return &Storage{
		root:   root,
		layout: layout,
		state:  NewStateFile(filepath.Join(root, layout.StateFile)),
		lock:   NewLock(filepath.Join(root, layout.LockFile), logger),
	}, nil
}

// Root returns the storage root directory
func (s *Storage) Root() string {
	return s.root
}

// PluginsDir returns the directory holding every managed plugin
func (s *Storage) PluginsDir() string {
	return filepath.Join(s.root, s.layout.PluginsDir)
}

// PluginDir returns the content-addressed directory of a managed plugin,
// or the declared path of a local one.
func (s *Storage) PluginDir(spec plugindomain.Spec) string {
	if spec.IsLocal() {
		return spec.Name
	}
	return filepath.Join(s.PluginsDir(), spec.ID().String())
}

// State returns the state file
func (s *Storage) State() *StateFile {
	return s.state
}

// Lock returns the installation lock
func (s *Storage) Lock() *Lock {
	return s.lock
}
