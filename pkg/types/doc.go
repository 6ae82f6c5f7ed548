// Package types defines the shared types used across stagehand: the
// filesystem intent interface, artifact references, resolved locations,
// and the platform descriptor threaded into OS-specific collaborators.
package types
