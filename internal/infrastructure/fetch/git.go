package fetch

import (
	"context"
	"fmt"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
	"github.com/zshrug/zshrug/internal/infrastructure/process"
)

// GitFetcher clones repositories with the git executable
type GitFetcher struct {
	executor *process.Executor
	binary   string
}

// NewGitFetcher creates a fetcher that runs git through executor
func NewGitFetcher(executor *process.Executor) *GitFetcher {
	return &GitFetcher{executor: executor, binary: "git"}
}

// Fetch makes a shallow, submodule-inclusive clone of spec.Name into dir
func (g *GitFetcher) Fetch(ctx context.Context, spec plugindomain.Spec, dir string) error {
	cmd := process.Command{
		Executable: g.binary,
		Args:       cloneArgs(spec.Name, dir),
	}

	if err := g.executor.Run(ctx, cmd); err != nil {
		return fmt.Errorf("couldn't clone git repository '%s': %w", spec.Name, err)
	}
	return nil
}

func cloneArgs(repo, dir string) []string {
	return []string{
		"clone",
		"--depth", "1",
		"--recurse-submodules",
		"--shallow-submodules",
		repo,
		dir,
	}
}
