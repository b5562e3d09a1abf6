package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Command describes one external process run
type Command struct {
	Executable string
	Args       []string
	WorkingDir string
}

// String renders the command line for messages
func (c Command) String() string {
	return strings.Join(append([]string{c.Executable}, c.Args...), " ")
}

// ExitError reports a process that ran but exited unsuccessfully
type ExitError struct {
	Command  Command
	ExitCode int
	Err      error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("'%s' exited with status %d", e.Command, e.ExitCode)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Executor runs processes to completion with fixed standard streams.
// There is deliberately no timeout: a child that never exits blocks the caller.
type Executor struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewExecutorWithStreams creates an executor with custom streams
func NewExecutorWithStreams(stdin io.Reader, stdout, stderr io.Writer) *Executor {
	return &Executor{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

// Run starts the command and waits for it
func (e *Executor) Run(ctx context.Context, cmd Command) error {
	execCmd := exec.CommandContext(ctx, cmd.Executable, cmd.Args...)
	execCmd.Dir = cmd.WorkingDir
	execCmd.Stdin = e.stdin
	execCmd.Stdout = e.stdout
	execCmd.Stderr = e.stderr

	if err := execCmd.Start(); err != nil {
		return fmt.Errorf("couldn't run '%s': %w", cmd.Executable, err)
	}

	if err := execCmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: cmd, ExitCode: exitErr.ExitCode(), Err: err}
		}
		return fmt.Errorf("couldn't wait for '%s': %w", cmd.Executable, err)
	}

	return nil
}
