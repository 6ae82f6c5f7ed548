package types

import "runtime"

// Platform describes the operating system stagehand is deploying on. It is
// passed explicitly into collaborators that select OS-specific commands
// (archive extraction, ownership changes) instead of being read from
// ambient global state.
type Platform struct {
	OS string
}

// CurrentPlatform returns the platform of the running process.
func CurrentPlatform() Platform {
	return Platform{OS: runtime.GOOS}
}

// IsWindows reports whether the platform is Windows, which lacks the unix
// ownership and tar conventions.
func (p Platform) IsWindows() bool { return p.OS == "windows" }
