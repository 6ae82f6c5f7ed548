package types

import (
	"io/fs"
)

// FS is the filesystem interface required for stagehand operations.
// The deploy core issues intents through it (create directory, write file,
// switch symlink) rather than raw syscalls, so tests can substitute
// implementations.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error

	// Lstat is used to distinguish symlinks from regular files.
	// Implementations without symlink support may fall back to Stat.
	Lstat(name string) (fs.FileInfo, error)
}
