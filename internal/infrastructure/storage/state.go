package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
	pluginports "github.com/zshrug/zshrug/internal/core/ports/plugin"
)

const stateVersion = 1

type stateDocument struct {
	Version int               `yaml:"version"`
	Plugins map[string]string `yaml:"plugins"`
}

// StateFile persists install states as a YAML snapshot. Every call reads the
// file again and every mutation rewrites it completely, so concurrent
// processes never see a partially applied change.
type StateFile struct {
	path string
}

// NewStateFile returns a state file at path; the file need not exist
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// Path returns the file location
func (f *StateFile) Path() string {
	return f.path
}

// Get returns the state of id, StateNotDownloaded when there is no entry
func (f *StateFile) Get(id plugindomain.ID) (plugindomain.InstallState, error) {
	entries, err := f.read()
	if err != nil {
		return "", err
	}

	if state, ok := entries[id]; ok {
		return state, nil
	}
	return plugindomain.StateNotDownloaded, nil
}

// Set records state for id and writes the whole mapping
func (f *StateFile) Set(id plugindomain.ID, state plugindomain.InstallState) error {
	if _, err := plugindomain.ParseID(id.String()); err != nil {
		return err
	}

	entries, err := f.read()
	if err != nil {
		return err
	}

	entries[id] = state
	return f.write(entries)
}

// Delete removes entries and writes the remaining mapping
func (f *StateFile) Delete(ids ...plugindomain.ID) error {
	entries, err := f.read()
	if err != nil {
		return err
	}

	for _, id := range ids {
		delete(entries, id)
	}
	return f.write(entries)
}

// Entries returns every recorded state
func (f *StateFile) Entries() (map[plugindomain.ID]plugindomain.InstallState, error) {
	return f.read()
}

func (f *StateFile) read() (map[plugindomain.ID]plugindomain.InstallState, error) {
	entries := make(map[plugindomain.ID]plugindomain.InstallState)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("couldn't read state file '%s': %w", f.path, err)
	}

	var doc stateDocument
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: couldn't decode '%s': %w", ErrStorageCorrupt, f.path, err)
	}

	if doc.Version > stateVersion {
		return nil, fmt.Errorf("%w: '%s' has unsupported version %d", ErrStorageCorrupt, f.path, doc.Version)
	}

	for key, value := range doc.Plugins {
		id, err := plugindomain.ParseID(key)
		if err != nil {
			return nil, fmt.Errorf("%w: '%s': %w", ErrStorageCorrupt, f.path, err)
		}
		state, err := plugindomain.ParseInstallState(value)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s in '%s': %w", ErrStorageCorrupt, id, f.path, err)
		}
		entries[id] = state
	}

	return entries, nil
}

// write replaces the file atomically: temp file, fsync, rename.
func (f *StateFile) write(entries map[plugindomain.ID]plugindomain.InstallState) error {
	doc := stateDocument{
		Version: stateVersion,
		Plugins: make(map[string]string, len(entries)),
	}
	for id, state := range entries {
		doc.Plugins[id.String()] = state.String()
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("couldn't encode state for '%s': %w", f.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+"-*")
	if err != nil {
		return fmt.Errorf("couldn't create temporary state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("couldn't write state file '%s': %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("couldn't sync state file '%s': %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("couldn't close state file '%s': %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("couldn't replace state file '%s': %w", f.path, err)
	}
	return nil
}

var _ pluginports.StateStore = (*StateFile)(nil)
