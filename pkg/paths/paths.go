// Package paths provides centralized path handling for stagehand. It owns
// the deploy-root layout contract (releases/, current, shared/) and the
// artifact cache layout, with XDG Base Directory compliance for defaults.
package paths

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"

	"github.com/stagehand-sh/stagehand/pkg/errors"
)

// Environment variable names
const (
	// EnvCacheRoot overrides the artifact cache root directory
	EnvCacheRoot = "STAGEHAND_CACHE_ROOT"
)

// Layout names under the deploy root.
// IMPORTANT: these constants are a contract other tooling may depend on
// (init scripts, monitoring, manual inspection). They are not
// user-configurable.
const (
	// ReleasesDirName holds one immutable directory per deployed version
	ReleasesDirName = "releases"

	// CurrentLinkName is the symlink marking the active release
	CurrentLinkName = "current"

	// SharedDirName holds state that survives across releases
	SharedDirName = "shared"

	// ManifestFileName is the persisted content fingerprint inside a release
	ManifestFileName = "manifest.yaml"

	// AppDirName is the directory name for stagehand-owned files (cache, logs)
	AppDirName = "stagehand"
)

// namePattern restricts artifact names to characters that are safe as a
// cache subdirectory on every supported platform.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Paths provides the filesystem layout for one deploy target
type Paths interface {
	// ArtifactName returns the validated deploy target name
	ArtifactName() string

	// DeployRoot returns the root of the release tree
	DeployRoot() string

	// ReleasesDir returns <deploy_root>/releases
	ReleasesDir() string

	// ReleasePath returns <deploy_root>/releases/<version>
	ReleasePath(version string) string

	// CurrentLink returns the path of the current symlink
	CurrentLink() string

	// SharedDir returns <deploy_root>/shared
	SharedDir() string

	// SharedPath returns a path under the shared directory
	SharedPath(rel string) string

	// ManifestPath returns the manifest file path inside a release
	ManifestPath(version string) string

	// CacheRoot returns the artifact cache root
	CacheRoot() string

	// ArtifactCacheDir returns <cache_root>/<name>/<version>
	ArtifactCacheDir(version string) string

	// CachedArtifactPath returns the cached artifact file for a version
	CachedArtifactPath(version, filename string) string
}

type paths struct {
	name       string
	deployRoot string
	cacheRoot  string
}

// New creates a Paths for the named deploy target. An empty cacheRoot
// selects the default under the XDG cache directory.
func New(name, deployRoot, cacheRoot string) (Paths, error) {
	if !namePattern.MatchString(name) {
		return nil, errors.Newf(errors.ErrNameInvalid,
			"artifact name %q contains invalid characters", name)
	}
	if deployRoot == "" {
		return nil, errors.New(errors.ErrConfigInvalid, "deploy root must not be empty")
	}
	if cacheRoot == "" {
		cacheRoot = DefaultCacheRoot()
	}
	return &paths{
		name:       name,
		deployRoot: filepath.Clean(deployRoot),
		cacheRoot:  filepath.Clean(cacheRoot),
	}, nil
}

// DefaultCacheRoot returns the artifact cache root: the EnvCacheRoot
// override when set, otherwise the XDG cache directory.
func DefaultCacheRoot() string {
	if root := os.Getenv(EnvCacheRoot); root != "" {
		return root
	}
	return filepath.Join(xdg.CacheHome, AppDirName)
}

func (p *paths) ArtifactName() string { return p.name }

func (p *paths) DeployRoot() string { return p.deployRoot }

func (p *paths) ReleasesDir() string {
	return filepath.Join(p.deployRoot, ReleasesDirName)
}

func (p *paths) ReleasePath(version string) string {
	return filepath.Join(p.ReleasesDir(), version)
}

func (p *paths) CurrentLink() string {
	return filepath.Join(p.deployRoot, CurrentLinkName)
}

func (p *paths) SharedDir() string {
	return filepath.Join(p.deployRoot, SharedDirName)
}

func (p *paths) SharedPath(rel string) string {
	return filepath.Join(p.SharedDir(), rel)
}

func (p *paths) ManifestPath(version string) string {
	return filepath.Join(p.ReleasePath(version), ManifestFileName)
}

func (p *paths) CacheRoot() string { return p.cacheRoot }

func (p *paths) ArtifactCacheDir(version string) string {
	return filepath.Join(p.cacheRoot, p.name, version)
}

func (p *paths) CachedArtifactPath(version, filename string) string {
	return filepath.Join(p.ArtifactCacheDir(version), filename)
}
