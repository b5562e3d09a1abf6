package build

import (
	"context"
	"fmt"

	pluginports "github.com/zshrug/zshrug/internal/core/ports/plugin"
	"github.com/zshrug/zshrug/internal/infrastructure/process"
)

// ShellRunner runs build commands as `<shell> -c <command>`
type ShellRunner struct {
	shell    string
	executor *process.Executor
}

// NewShellRunner creates a runner; an empty shell means sh
func NewShellRunner(shell string, executor *process.Executor) *ShellRunner {
	if shell == "" {
		shell = "sh"
	}
	return &ShellRunner{shell: shell, executor: executor}
}

// Run executes command with dir as the working directory
func (r *ShellRunner) Run(ctx context.Context, command, dir string) error {
	cmd := process.Command{
		Executable: r.shell,
		Args:       []string{"-c", command},
		WorkingDir: dir,
	}

	if err := r.executor.Run(ctx, cmd); err != nil {
		return fmt.Errorf("build command failed in '%s': %w", dir, err)
	}
	return nil
}

var _ pluginports.BuildRunner = (*ShellRunner)(nil)
