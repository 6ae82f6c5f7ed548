// Package fetch retrieves artifacts into the local cache. It dispatches on
// the resolved location kind: HTTP download, binary-repository coordinate,
// or local filesystem copy. All transports verify the expected SHA-256
// checksum when one is configured, and re-fetching is idempotent: a
// destination file that already matches the checksum is left alone.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/logging"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// Fetcher retrieves the artifact at loc into dest, verifying checksum when
// non-empty. Retry policy, if any, lives behind this interface; the deploy
// core treats a failure as fatal for the run.
type Fetcher interface {
	Fetch(ctx context.Context, loc types.Location, dest, checksum string) error
}

// Options configures the transports.
type Options struct {
	// RepositoryURL is the base URL of the binary repository used for
	// coordinate locations, e.g. "https://repo.example.com/releases".
	RepositoryURL string

	// SSLVerify controls TLS certificate verification on HTTP transports.
	SSLVerify bool
}

// Dispatcher routes a fetch to the transport matching the location kind.
type Dispatcher struct {
	fs    types.FS
	http  *HTTPFetcher
	repo  *RepositoryFetcher
	local *LocalFetcher
}

// NewDispatcher creates a Dispatcher with all three transports wired.
func NewDispatcher(fs types.FS, opts Options) *Dispatcher {
	httpFetcher := NewHTTPFetcher(fs, opts.SSLVerify)
	return &Dispatcher{
		fs:    fs,
		http:  httpFetcher,
		repo:  NewRepositoryFetcher(opts.RepositoryURL, httpFetcher),
		local: NewLocalFetcher(fs),
	}
}

// Repository exposes the repository transport, used for resolving the
// "latest" version sentinel before the lifecycle starts.
func (d *Dispatcher) Repository() *RepositoryFetcher {
	return d.repo
}

// Fetch retrieves the artifact, skipping the transport entirely when the
// destination already holds a checksum-matching file.
func (d *Dispatcher) Fetch(ctx context.Context, loc types.Location, dest, checksum string) error {
	logger := logging.GetLogger("fetch")

	if checksum != "" {
		if ok, err := checksumMatches(d.fs, dest, checksum); err == nil && ok {
			logger.Debug().Str("dest", dest).Msg("Cached artifact matches checksum, skipping fetch")
			return nil
		}
	}

	switch loc.Kind {
	case types.LocationHTTP:
		return d.http.Fetch(ctx, loc, dest, checksum)
	case types.LocationRepository:
		return d.repo.Fetch(ctx, loc, dest, checksum)
	default:
		return d.local.Fetch(ctx, loc, dest, checksum)
	}
}

// fileChecksum returns the hex-encoded SHA-256 of the file at path.
func fileChecksum(fsys types.FS, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// checksumMatches reports whether path exists and hashes to expected.
func checksumMatches(fsys types.FS, path, expected string) (bool, error) {
	actual, err := fileChecksum(fsys, path)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}

// verifyChecksum fails with a checksum-mismatch error when the fetched file
// does not hash to expected. An empty expected skips verification.
func verifyChecksum(fsys types.FS, path, expected string) error {
	if expected == "" {
		return nil
	}
	actual, err := fileChecksum(fsys, path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFetchFailed, "cannot hash fetched artifact %q", path)
	}
	if actual != expected {
		return errors.Newf(errors.ErrChecksumMismatch,
			"artifact checksum mismatch for %q", path).
			WithDetail("expected", expected).
			WithDetail("actual", actual)
	}
	return nil
}
