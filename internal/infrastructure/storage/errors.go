package storage

import "errors"

// ErrStorageCorrupt indicates the state file exists but cannot be trusted.
// It is never repaired automatically.
var ErrStorageCorrupt = errors.New("storage state is corrupt")
