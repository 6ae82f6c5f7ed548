// Package release reads the installed-release state of a deploy root and
// decides whether a deploy is required.
//
// The Tracker is a pure read of filesystem state: the active version (from
// the current symlink), the history of installed releases ordered by
// modification time, and the set of previously installed version numbers.
// The decision engine combines that state with the desired version, the
// persisted manifests, and the force flag.
package release
