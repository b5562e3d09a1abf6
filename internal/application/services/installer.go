package services

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
	pluginports "github.com/zshrug/zshrug/internal/core/ports/plugin"
	"github.com/zshrug/zshrug/internal/infrastructure/logging"
)

// Phase names one step of the install pipeline
type Phase string

const (
	PhaseFetch Phase = "fetch"
	PhaseBuild Phase = "build"
)

// PhaseError is a failure confined to one plugin. The state store still
// holds the last phase that completed.
type PhaseError struct {
	Phase Phase
	Spec  plugindomain.Spec
	Err   error
}

func (e *PhaseError) Error() string {
	verb := "fetch"
	if e.Phase == PhaseBuild {
		verb = "build"
	}
	return fmt.Sprintf("couldn't %s plugin %s: %s", verb, e.Spec, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Installer drives one plugin through fetch and build, persisting the state
// after each phase. It must only be used while holding the storage lock.
type Installer struct {
	store   pluginports.StateStore
	dirs    pluginports.DirResolver
	fetcher pluginports.Fetcher
	builder pluginports.BuildRunner
	logger  *logging.Logger
}

// NewInstaller creates a new installer
func NewInstaller(
	store pluginports.StateStore,
	dirs pluginports.DirResolver,
	fetcher pluginports.Fetcher,
	builder pluginports.BuildRunner,
	logger *logging.Logger,
) *Installer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Installer{
		store:   store,
		dirs:    dirs,
		fetcher: fetcher,
		builder: builder,
		logger:  logger,
	}
}

// Install advances spec from state to StateBuilt. Plugin failures come back
// as *PhaseError; any other error means the state store could not be written.
func (i *Installer) Install(ctx context.Context, spec plugindomain.Spec, state plugindomain.InstallState) error {
	id := spec.ID()

	if state.NeedsFetch() {
		if err := i.fetch(ctx, spec); err != nil {
			return &PhaseError{Phase: PhaseFetch, Spec: spec, Err: err}
		}
		if err := i.store.Set(id, plugindomain.StateDownloaded); err != nil {
			return fmt.Errorf("couldn't save storage state: %w", err)
		}
		state = plugindomain.StateDownloaded
	}

	if state.NeedsBuild() {
		if err := i.build(ctx, spec); err != nil {
			return &PhaseError{Phase: PhaseBuild, Spec: spec, Err: err}
		}
		if err := i.store.Set(id, plugindomain.StateBuilt); err != nil {
			return fmt.Errorf("couldn't save storage state: %w", err)
		}
	}

	return nil
}

// fetch recreates the plugin directory empty and fills it. On failure the
// directory is removed so the next attempt starts from scratch.
func (i *Installer) fetch(ctx context.Context, spec plugindomain.Spec) error {
	dir := i.dirs.PluginDir(spec)

	i.logger.Info("fetching plugin",
		zap.String("plugin", spec.Name),
		zap.String("from", spec.From.String()),
	)

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("couldn't clear plugin directory '%s': %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("couldn't create plugin directory '%s': %w", dir, err)
	}

	if err := i.fetcher.Fetch(ctx, spec, dir); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			i.logger.Warn("couldn't remove partially fetched plugin", zap.String("dir", dir), zap.Error(rmErr))
		}
		return err
	}

	return nil
}

func (i *Installer) build(ctx context.Context, spec plugindomain.Spec) error {
	if spec.Build == "" {
		return nil
	}

	dir := i.dirs.PluginDir(spec)
	i.logger.Info("building plugin",
		zap.String("plugin", spec.Name),
		zap.String("command", spec.Build),
	)

	return i.builder.Run(ctx, spec.Build, dir)
}
