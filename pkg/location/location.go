// Package location classifies artifact location strings into their three
// shapes (HTTP URL, repository coordinate, local path) and derives cache
// filenames. Classification happens exactly once; the resulting
// types.Location is threaded through the fetch and deploy layers.
package location

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/logging"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// DefaultExtension is assumed for repository coordinates without an
// explicit extension segment.
const DefaultExtension = "jar"

var httpPattern = regexp.MustCompile(`(?i)^https?://`)

// Classify determines the shape of a raw location string. It performs no
// I/O; existence checks belong to Resolve.
func Classify(raw string) types.Location {
	if httpPattern.MatchString(raw) {
		return types.Location{Kind: types.LocationHTTP, Raw: raw}
	}

	if parts := strings.Split(raw, ":"); len(parts) >= 3 {
		loc := types.Location{
			Kind:       types.LocationRepository,
			Raw:        raw,
			Group:      parts[0],
			ArtifactID: parts[1],
			Version:    parts[2],
			Extension:  DefaultExtension,
		}
		if len(parts) >= 4 && parts[3] != "" {
			loc.Extension = parts[3]
		}
		return loc
	}

	return types.Location{Kind: types.LocationLocal, Raw: raw}
}

// Resolve classifies ref.Location and validates the combination against the
// rest of the artifact reference. Fatal configuration errors are caught
// here, before any I/O is attempted:
//   - the "latest" sentinel with an opaque HTTP URL (no repository to ask)
//   - a local source path that does not exist
func Resolve(fs types.FS, ref types.ArtifactRef) (types.Location, error) {
	logger := logging.GetLogger("location")

	loc := Classify(ref.Location)
	logger.Debug().
		Str("location", ref.Location).
		Str("kind", string(loc.Kind)).
		Msg("Classified artifact location")

	if loc.IsHTTP() && ref.Version == types.LatestVersion {
		return types.Location{}, errors.New(errors.ErrLatestOverHTTP,
			"version \"latest\" cannot be resolved from an opaque HTTP URL; use a repository coordinate")
	}

	if loc.IsLocal() {
		if _, err := fs.Stat(loc.Raw); err != nil {
			return types.Location{}, errors.Wrapf(err, errors.ErrSourceNotFound,
				"local artifact source %q does not exist", loc.Raw)
		}
	}

	return loc, nil
}

// CacheFilename derives the filename the fetched artifact is cached under.
// Repository coordinates get "<artifact>-<version>.<extension>"; URLs and
// local paths keep their basename.
func CacheFilename(loc types.Location, version string) string {
	switch loc.Kind {
	case types.LocationRepository:
		return loc.ArtifactID + "-" + version + "." + loc.Extension
	case types.LocationHTTP:
		if u, err := url.Parse(loc.Raw); err == nil && u.Path != "" {
			return path.Base(u.Path)
		}
		return path.Base(loc.Raw)
	default:
		return filepath.Base(loc.Raw)
	}
}
