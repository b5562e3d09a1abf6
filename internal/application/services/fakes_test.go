package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
	pluginports "github.com/zshrug/zshrug/internal/core/ports/plugin"
	"github.com/zshrug/zshrug/internal/infrastructure/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(t *testing.T) (*logging.Logger, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	logger, err := logging.New(logging.Config{Level: "debug", Output: out})
	require.NoError(t, err)
	return logger, out
}

// memStore is an in-memory StateStore that records every Set
type memStore struct {
	mu      sync.Mutex
	entries map[plugindomain.ID]plugindomain.InstallState
	sets    []plugindomain.InstallState
	gets    int
	setErr  error
	getErr  error
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[plugindomain.ID]plugindomain.InstallState)}
}

func (m *memStore) Get(id plugindomain.ID) (plugindomain.InstallState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return "", m.getErr
	}
	if state, ok := m.entries[id]; ok {
		return state, nil
	}
	return plugindomain.StateNotDownloaded, nil
}

func (m *memStore) Set(id plugindomain.ID, state plugindomain.InstallState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[id] = state
	m.sets = append(m.sets, state)
	return nil
}

func (m *memStore) Delete(ids ...plugindomain.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.entries, id)
	}
	return nil
}

func (m *memStore) Entries() (map[plugindomain.ID]plugindomain.InstallState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[plugindomain.ID]plugindomain.InstallState, len(m.entries))
	for id, state := range m.entries {
		out[id] = state
	}
	return out, nil
}

func (m *memStore) state(id plugindomain.ID) plugindomain.InstallState {
	state, _ := m.Get(id)
	return state
}

func (m *memStore) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sets)
}

// countingLocker is an in-process Locker that counts acquisitions
type countingLocker struct {
	mu       sync.Mutex
	held     sync.Mutex
	acquires int
	released int
	err      error
}

func (l *countingLocker) Acquire() (pluginports.Guard, error) {
	l.mu.Lock()
	if l.err != nil {
		l.mu.Unlock()
		return nil, l.err
	}
	l.acquires++
	l.mu.Unlock()

	l.held.Lock()
	return &countingGuard{locker: l}, nil
}

func (l *countingLocker) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acquires, l.released
}

type countingGuard struct {
	locker *countingLocker
	done   bool
}

func (g *countingGuard) Release() error {
	if g.done {
		return nil
	}
	g.done = true
	g.locker.mu.Lock()
	g.locker.released++
	g.locker.mu.Unlock()
	g.locker.held.Unlock()
	return nil
}

// dirResolver places managed plugins under root and leaves local paths alone
type dirResolver struct {
	root string
}

func (d dirResolver) PluginDir(spec plugindomain.Spec) string {
	if spec.IsLocal() {
		return spec.Name
	}
	return filepath.Join(d.root, spec.ID().String())
}

// fakeFetcher writes a marker file, or fails for the names in fail
type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int), fail: make(map[string]error)}
}

func (f *fakeFetcher) Fetch(_ context.Context, spec plugindomain.Spec, dir string) error {
	f.mu.Lock()
	f.calls[spec.Name]++
	err := f.fail[spec.Name]
	f.mu.Unlock()

	if err != nil {
		// leave debris behind so cleanup of failed fetches is observable
		_ = os.WriteFile(filepath.Join(dir, "partial"), []byte("x"), 0644)
		return err
	}
	return os.WriteFile(filepath.Join(dir, "plugin.zsh"), []byte("# "+spec.Name), 0644)
}

func (f *fakeFetcher) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeFetcher) setFailure(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, name)
		return
	}
	f.fail[name] = err
}

// fakeBuilder records build commands, failing those listed in fail
type fakeBuilder struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{fail: make(map[string]error)}
}

func (b *fakeBuilder) Run(_ context.Context, command, dir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, command)
	if err := b.fail[command]; err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return errors.New("plugin directory missing")
	}
	return nil
}

func (b *fakeBuilder) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *fakeBuilder) setFailure(command string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.fail, command)
		return
	}
	b.fail[command] = err
}

type fixture struct {
	store   *memStore
	locker  *countingLocker
	dirs    dirResolver
	fetcher *fakeFetcher
	builder *fakeBuilder
	logs    *syncBuffer
	service *InstallService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, logs := newTestLogger(t)

	f := &fixture{
		store:   newMemStore(),
		locker:  &countingLocker{},
		dirs:    dirResolver{root: t.TempDir()},
		fetcher: newFakeFetcher(),
		builder: newFakeBuilder(),
		logs:    logs,
	}
	installer := NewInstaller(f.store, f.dirs, f.fetcher, f.builder, logger)
	f.service = NewInstallService(f.store, f.locker, f.dirs, installer, logger)
	return f
}

func names(specs []plugindomain.Spec) []string {
	out := make([]string, 0, len(specs))
	for _, spec := range specs {
		out = append(out, spec.Name)
	}
	return out
}
