package plugindomain

import "fmt"

// InstallState is the lifecycle stage of a managed plugin
type InstallState string

const (
	// StateNotDownloaded - nothing usable on disk.
	StateNotDownloaded InstallState = "not-downloaded"

	// StateDownloaded - fetched, build command not yet run successfully.
	StateDownloaded InstallState = "downloaded"

	// StateBuilt - ready to be sourced.
	StateBuilt InstallState = "built"
)

// ParseInstallState validates a persisted state value
func ParseInstallState(s string) (InstallState, error) {
	switch state := InstallState(s); state {
	case StateNotDownloaded, StateDownloaded, StateBuilt:
		return state, nil
	default:
		return "", fmt.Errorf("unknown install state %q", s)
	}
}

// String returns the persisted spelling
func (s InstallState) String() string {
	return string(s)
}

// IsBuilt reports whether no more work is needed
func (s InstallState) IsBuilt() bool {
	return s == StateBuilt
}

// NeedsFetch reports whether the fetch phase has to run
func (s InstallState) NeedsFetch() bool {
	return s == StateNotDownloaded
}

// NeedsBuild reports whether the build phase has to run
func (s InstallState) NeedsBuild() bool {
	return s == StateDownloaded
}
