package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
	pluginports "github.com/zshrug/zshrug/internal/core/ports/plugin"
	"github.com/zshrug/zshrug/internal/infrastructure/logging"
)

// CleanupService removes managed plugins that are no longer configured
type CleanupService struct {
	store      pluginports.StateStore
	locker     pluginports.Locker
	pluginsDir string
	logger     *logging.Logger
}

// NewCleanupService creates a cleanup service over the plugin directories in pluginsDir
func NewCleanupService(store pluginports.StateStore, locker pluginports.Locker, pluginsDir string, logger *logging.Logger) *CleanupService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CleanupService{
		store:      store,
		locker:     locker,
		pluginsDir: pluginsDir,
		logger:     logger,
	}
}

// Cleanup deletes every plugin directory and state entry not referenced by
// keep, or all of them when all is set. It returns the ids removed; errors
// for individual directories are collected and returned together.
func (c *CleanupService) Cleanup(keep []plugindomain.Spec, all bool) ([]plugindomain.ID, error) {
	guard, err := c.locker.Acquire()
	if err != nil {
		return nil, fmt.Errorf("couldn't acquire storage lock: %w", err)
	}
	defer func() {
		if err := guard.Release(); err != nil {
			c.logger.Warn("couldn't release storage lock", zap.Error(err))
		}
	}()

	referenced := make(map[plugindomain.ID]bool)
	if !all {
		for _, spec := range keep {
			if !spec.IsLocal() {
				referenced[spec.ID()] = true
			}
		}
	}

	stale := make(map[plugindomain.ID]bool)

	entries, err := c.store.Entries()
	if err != nil {
		return nil, fmt.Errorf("couldn't read storage state: %w", err)
	}
	for id := range entries {
		if !c.managed(id.String()) {
			continue
		}
		if !referenced[id] {
			stale[id] = true
		}
	}

	dirEntries, err := os.ReadDir(c.pluginsDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("couldn't list plugin directory '%s': %w", c.pluginsDir, err)
	}
	for _, entry := range dirEntries {
		if !c.managed(entry.Name()) {
			continue
		}
		id := plugindomain.ID(entry.Name())
		if !referenced[id] {
			stale[id] = true
		}
	}

	ids := make([]plugindomain.ID, 0, len(stale))
	for id := range stale {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Forgetting the state first keeps it from claiming a plugin whose
	// directory is already gone.
	if err := c.store.Delete(ids...); err != nil {
		return nil, fmt.Errorf("couldn't save storage state: %w", err)
	}

	var result *multierror.Error
	removed := make([]plugindomain.ID, 0, len(ids))
	for _, id := range ids {
		dir := filepath.Join(c.pluginsDir, id.String())
		if err := os.RemoveAll(dir); err != nil {
			result = multierror.Append(result, fmt.Errorf("couldn't remove '%s': %w", dir, err))
			continue
		}
		c.logger.Info("removed plugin", zap.String("id", id.String()))
		removed = append(removed, id)
	}

	return removed, result.ErrorOrNil()
}

// managed reports whether name is a plugin id; anything else is left alone
func (c *CleanupService) managed(name string) bool {
	if _, err := plugindomain.ParseID(name); err != nil {
		c.logger.Warn("skipping unrecognized plugin entry", zap.String("name", name))
		return false
	}
	return true
}
