package fetch

import "errors"

var (
	// ErrLocalSource indicates a fetch was requested for an unmanaged plugin.
	ErrLocalSource = errors.New("local plugins are never fetched")

	// ErrUnknownSource indicates a source kind with no fetcher.
	ErrUnknownSource = errors.New("unknown plugin source")
)
