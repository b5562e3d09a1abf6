package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
	pluginports "github.com/zshrug/zshrug/internal/core/ports/plugin"
	"github.com/zshrug/zshrug/internal/infrastructure/logging"
)

// PluginStatus is a configured plugin together with what is on disk for it
type PluginStatus struct {
	Spec  plugindomain.Spec
	ID    plugindomain.ID
	State plugindomain.InstallState
	Dir   string
}

// InstallService makes a batch of plugins ready to load.
//
// At most one process installs a given plugin at a time: all work happens
// while holding the storage lock, and every candidate is re-checked after the
// lock is taken because another process may have finished it meanwhile.
type InstallService struct {
	store     pluginports.StateStore
	locker    pluginports.Locker
	dirs      pluginports.DirResolver
	installer *Installer
	logger    *logging.Logger
}

// NewInstallService creates a new install service
func NewInstallService(
	store pluginports.StateStore,
	locker pluginports.Locker,
	dirs pluginports.DirResolver,
	installer *Installer,
	logger *logging.Logger,
) *InstallService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &InstallService{
		store:     store,
		locker:    locker,
		dirs:      dirs,
		installer: installer,
		logger:    logger,
	}
}

// EnsureInstalled installs whatever is missing and returns the specs that are
// ready, in input order. A plugin that fails is logged and left out; the
// returned error is reserved for storage and lock failures.
func (s *InstallService) EnsureInstalled(ctx context.Context, specs []plugindomain.Spec) ([]plugindomain.Spec, error) {
	candidates, err := s.pending(specs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return specs, nil
	}

	failed, err := s.withLock(func() (map[plugindomain.ID]bool, error) {
		failed := make(map[plugindomain.ID]bool)
		for _, spec := range candidates {
			state, err := s.stateOf(spec)
			if err != nil {
				return nil, err
			}
			if state.IsBuilt() {
				s.logger.Info("another process has just installed this plugin", zap.String("plugin", spec.Name))
				continue
			}

			if err := s.install(ctx, spec, state, failed); err != nil {
				return nil, err
			}
		}
		return failed, nil
	})
	if err != nil {
		return nil, err
	}

	return without(specs, failed), nil
}

// Upgrade fetches and builds every managed plugin again, whatever its state.
// Failures are isolated the same way as in EnsureInstalled.
func (s *InstallService) Upgrade(ctx context.Context, specs []plugindomain.Spec) ([]plugindomain.Spec, error) {
	failed, err := s.withLock(func() (map[plugindomain.ID]bool, error) {
		failed := make(map[plugindomain.ID]bool)
		for _, spec := range unique(specs) {
			if spec.IsLocal() {
				continue
			}

			// Recorded before the directory is cleared so the state is
			// never ahead of what is on disk.
			if err := s.store.Set(spec.ID(), plugindomain.StateNotDownloaded); err != nil {
				return nil, fmt.Errorf("couldn't save storage state: %w", err)
			}

			if err := s.install(ctx, spec, plugindomain.StateNotDownloaded, failed); err != nil {
				return nil, err
			}
		}
		return failed, nil
	})
	if err != nil {
		return nil, err
	}

	return without(specs, failed), nil
}

// Status reports the state and directory of every spec without taking the lock
func (s *InstallService) Status(specs []plugindomain.Spec) ([]PluginStatus, error) {
	statuses := make([]PluginStatus, 0, len(specs))
	for _, spec := range specs {
		state, err := s.stateOf(spec)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, PluginStatus{
			Spec:  spec,
			ID:    spec.ID(),
			State: state,
			Dir:   s.dirs.PluginDir(spec),
		})
	}
	return statuses, nil
}

// pending is the unlocked pre-check. Its answers may be stale and only
// decide whether the lock is worth taking.
func (s *InstallService) pending(specs []plugindomain.Spec) ([]plugindomain.Spec, error) {
	var candidates []plugindomain.Spec
	for _, spec := range unique(specs) {
		state, err := s.stateOf(spec)
		if err != nil {
			return nil, err
		}
		if !state.IsBuilt() {
			candidates = append(candidates, spec)
		}
	}
	return candidates, nil
}

// install runs the installer and records isolated failures in failed
func (s *InstallService) install(ctx context.Context, spec plugindomain.Spec, state plugindomain.InstallState, failed map[plugindomain.ID]bool) error {
	err := s.installer.Install(ctx, spec, state)
	if err == nil {
		return nil
	}

	var phaseErr *PhaseError
	if !errors.As(err, &phaseErr) {
		return err
	}

	s.logger.ErrorChain(err)
	failed[spec.ID()] = true
	return nil
}

// withLock runs fn while holding the storage lock, releasing it on every path
func (s *InstallService) withLock(fn func() (map[plugindomain.ID]bool, error)) (map[plugindomain.ID]bool, error) {
	guard, err := s.locker.Acquire()
	if err != nil {
		return nil, fmt.Errorf("couldn't acquire storage lock: %w", err)
	}
	defer func() {
		if err := guard.Release(); err != nil {
			s.logger.Warn("couldn't release storage lock", zap.Error(err))
		}
	}()

	return fn()
}

// stateOf never consults storage for local plugins
func (s *InstallService) stateOf(spec plugindomain.Spec) (plugindomain.InstallState, error) {
	if spec.IsLocal() {
		return plugindomain.StateBuilt, nil
	}

	state, err := s.store.Get(spec.ID())
	if err != nil {
		return "", fmt.Errorf("couldn't read storage state: %w", err)
	}
	return state, nil
}

// unique keeps the first spec of every id
func unique(specs []plugindomain.Spec) []plugindomain.Spec {
	seen := make(map[plugindomain.ID]bool, len(specs))
	out := make([]plugindomain.Spec, 0, len(specs))
	for _, spec := range specs {
		id := spec.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, spec)
	}
	return out
}

func without(specs []plugindomain.Spec, failed map[plugindomain.ID]bool) []plugindomain.Spec {
	out := make([]plugindomain.Spec, 0, len(specs))
	for _, spec := range specs {
		if spec.IsLocal() || !failed[spec.ID()] {
			out = append(out, spec)
		}
	}
	return out
}
