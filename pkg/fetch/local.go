package fetch

import (
	"context"
	"path/filepath"

	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/logging"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// LocalFetcher copies a local artifact into the cache through the
// filesystem intent layer.
type LocalFetcher struct {
	fs types.FS
}

// NewLocalFetcher creates a LocalFetcher.
func NewLocalFetcher(fs types.FS) *LocalFetcher {
	return &LocalFetcher{fs: fs}
}

// Fetch copies loc.Raw to dest and verifies the checksum.
func (l *LocalFetcher) Fetch(_ context.Context, loc types.Location, dest, checksum string) error {
	logger := logging.GetLogger("fetch.local")
	logger.Info().Str("source", loc.Raw).Str("dest", dest).Msg("Copying local artifact")

	data, err := l.fs.ReadFile(loc.Raw)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFetchFailed, "cannot read local artifact %q", loc.Raw)
	}

	if err := l.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create cache directory for %q", dest)
	}

	if err := l.fs.WriteFile(dest, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write cached artifact %q", dest)
	}

	return verifyChecksum(l.fs, dest, checksum)
}
