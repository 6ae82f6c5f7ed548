package release

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/paths"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// Release is one installed release directory under releases/.
type Release struct {
	Version string
	Path    string
	ModTime time.Time
}

// Tracker inspects the releases directory and the current symlink. It has
// no side effects.
type Tracker struct {
	fs    types.FS
	paths paths.Paths
}

// NewTracker creates a Tracker over the given deploy layout.
func NewTracker(fs types.FS, p paths.Paths) *Tracker {
	return &Tracker{fs: fs, paths: p}
}

// Current returns the version the current symlink points at, or "" if the
// symlink does not exist (nothing installed yet).
func (t *Tracker) Current() (string, error) {
	target, err := t.fs.Readlink(t.paths.CurrentLink())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read current symlink %q", t.paths.CurrentLink())
	}
	return filepath.Base(target), nil
}

// History returns all installed releases except the active one, sorted
// ascending by modification time. A missing releases directory yields an
// empty history.
func (t *Tracker) History() ([]Release, error) {
	current, err := t.Current()
	if err != nil {
		return nil, err
	}

	entries, err := t.fs.ReadDir(t.paths.ReleasesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read releases directory %q", t.paths.ReleasesDir())
	}

	var history []Release
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == current {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess,
				"cannot stat release %q", entry.Name())
		}
		history = append(history, Release{
			Version: entry.Name(),
			Path:    t.paths.ReleasePath(entry.Name()),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].ModTime.Before(history[j].ModTime)
	})
	return history, nil
}

// PreviousVersions returns the set of version numbers in History.
func (t *Tracker) PreviousVersions() (map[string]bool, error) {
	history, err := t.History()
	if err != nil {
		return nil, err
	}
	versions := make(map[string]bool, len(history))
	for _, rel := range history {
		versions[rel.Version] = true
	}
	return versions, nil
}
