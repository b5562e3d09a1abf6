package storage

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	pluginports "github.com/zshrug/zshrug/internal/core/ports/plugin"
	"github.com/zshrug/zshrug/internal/infrastructure/logging"
)

// Lock is an advisory flock(2) on a zero-length file. Separate opens of the
// file conflict with each other, including within one process.
type Lock struct {
	path   string
	logger *logging.Logger
}

// NewLock returns a lock on path; the file is created on first Acquire
func NewLock(path string, logger *logging.Logger) *Lock {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Lock{path: path, logger: logger}
}

// Path returns the lock file location
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock, blocking while another process holds it.
// Callers must release the returned guard.
func (l *Lock) Acquire() (pluginports.Guard, error) {
	file, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("couldn't open lock file '%s': %w", l.path, err)
	}

	fd := int(file.Fd())
	err = flock(fd, unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		l.logger.Info("waiting for another process to release the lock", zap.String("path", l.path))
		err = flock(fd, unix.LOCK_EX)
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("couldn't lock file '%s': %w", l.path, err)
	}

	return &Guard{file: file}, nil
}

// Guard is a held Lock
type Guard struct {
	file *os.File
}

// Release unlocks and closes the lock file. Releasing twice is a no-op.
func (g *Guard) Release() error {
	if g.file == nil {
		return nil
	}

	file := g.file
	g.file = nil

	unlockErr := flock(int(file.Fd()), unix.LOCK_UN)
	closeErr := file.Close()
	if unlockErr != nil {
		return fmt.Errorf("couldn't unlock file '%s': %w", file.Name(), unlockErr)
	}
	return closeErr
}

func flock(fd int, how int) error {
	for {
		err := unix.Flock(fd, how)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

var _ pluginports.Locker = (*Lock)(nil)
