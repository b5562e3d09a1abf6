package storage

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestLock_UncontendedAcquireIsSilent(t *testing.T) {
	var out syncBuffer
	logger, err := logging.New(logging.Config{Level: "debug", Output: &out})
	require.NoError(t, err)

	lock := NewLock(filepath.Join(t.TempDir(), "lock"), logger)
	guard, err := lock.Acquire()
	require.NoError(t, err)
	require.NoError(t, guard.Release())

	assert.Empty(t, out.String())
}

func TestLock_SecondAcquireWaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")
	var out syncBuffer
	logger, err := logging.New(logging.Config{Level: "info", Output: &out})
	require.NoError(t, err)

	first, err := NewLock(path, logger).Acquire()
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := NewLock(path, logger).Acquire()
		if assert.NoError(t, err) {
			close(acquired)
			assert.NoError(t, second.Release())
		}
	}()

	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("waiting for another process"))
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case <-acquired:
		t.Fatal("second acquire succeeded while the lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, first.Release())

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second acquire did not proceed after release")
	}
}

func TestLock_OpenFailure_IsError(t *testing.T) {
	lock := NewLock(filepath.Join(t.TempDir(), "missing", "lock"), nil)

	_, err := lock.Acquire()
	assert.Error(t, err)
}

func TestGuard_DoubleReleaseIsNoop(t *testing.T) {
	guard, err := NewLock(filepath.Join(t.TempDir(), "lock"), nil).Acquire()
	require.NoError(t, err)

	require.NoError(t, guard.Release())
	assert.NoError(t, guard.Release())
}
