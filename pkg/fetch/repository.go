package fetch

import (
	"context"
	"strings"

	"github.com/beevik/etree"

	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/logging"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// RepositoryFetcher resolves maven-layout repository coordinates to
// download URLs and delegates the transfer to the HTTP fetcher.
type RepositoryFetcher struct {
	baseURL string
	http    *HTTPFetcher
}

// NewRepositoryFetcher creates a RepositoryFetcher against baseURL.
func NewRepositoryFetcher(baseURL string, http *HTTPFetcher) *RepositoryFetcher {
	return &RepositoryFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http,
	}
}

// artifactDir returns <base>/<group with dots as slashes>/<artifact>.
func (r *RepositoryFetcher) artifactDir(loc types.Location) string {
	group := strings.ReplaceAll(loc.Group, ".", "/")
	return r.baseURL + "/" + group + "/" + loc.ArtifactID
}

// ArtifactURL returns the download URL for a concrete version.
func (r *RepositoryFetcher) ArtifactURL(loc types.Location, version string) string {
	return r.artifactDir(loc) + "/" + version + "/" +
		loc.ArtifactID + "-" + version + "." + loc.Extension
}

// Fetch downloads the coordinate's artifact into dest. The coordinate's
// version segment must already be concrete; latest resolution happens
// before the lifecycle starts.
func (r *RepositoryFetcher) Fetch(ctx context.Context, loc types.Location, dest, checksum string) error {
	if r.baseURL == "" {
		return errors.New(errors.ErrConfigInvalid,
			"repository coordinate given but no repository URL configured")
	}
	return r.http.download(ctx, r.ArtifactURL(loc, loc.Version), dest, checksum)
}

// ResolveLatest asks the repository's maven-metadata.xml for the newest
// published version of the coordinate. Preference order is
// <versioning><latest>, then <versioning><release>, then the last entry of
// <versions>.
func (r *RepositoryFetcher) ResolveLatest(ctx context.Context, loc types.Location) (string, error) {
	logger := logging.GetLogger("fetch.repository")

	if r.baseURL == "" {
		return "", errors.New(errors.ErrConfigInvalid,
			"repository coordinate given but no repository URL configured")
	}

	metadataURL := r.artifactDir(loc) + "/maven-metadata.xml"
	body, err := r.http.get(ctx, metadataURL)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrLatestUnresolvable,
			"cannot fetch repository metadata from %q", metadataURL)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return "", errors.Wrapf(err, errors.ErrLatestUnresolvable,
			"cannot parse repository metadata from %q", metadataURL)
	}

	for _, path := range []string{
		"//metadata/versioning/latest",
		"//metadata/versioning/release",
	} {
		if el := doc.FindElement(path); el != nil && strings.TrimSpace(el.Text()) != "" {
			version := strings.TrimSpace(el.Text())
			logger.Info().Str("version", version).Msg("Resolved latest version from repository metadata")
			return version, nil
		}
	}

	versions := doc.FindElements("//metadata/versioning/versions/version")
	if len(versions) > 0 {
		version := strings.TrimSpace(versions[len(versions)-1].Text())
		if version != "" {
			logger.Info().Str("version", version).Msg("Resolved latest version from version list")
			return version, nil
		}
	}

	return "", errors.Newf(errors.ErrLatestUnresolvable,
		"repository metadata at %q lists no versions", metadataURL)
}
