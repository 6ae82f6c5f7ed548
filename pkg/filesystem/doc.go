// Package filesystem provides implementations of types.FS: a direct OS
// implementation used in production, and an afero-backed one for tests that
// do not need real symlinks.
package filesystem
