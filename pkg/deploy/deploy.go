// Package deploy drives the release lifecycle for a single deploy attempt:
// directory setup, fetch, staging, hook invocation, the current-symlink
// switch, and retention pruning. One invocation runs strictly sequentially
// to completion; a failure aborts the remainder of the run and leaves
// already-committed filesystem effects in place.
package deploy

import (
	"context"
	"path/filepath"

	"github.com/stagehand-sh/stagehand/pkg/archive"
	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/fetch"
	"github.com/stagehand-sh/stagehand/pkg/hooks"
	"github.com/stagehand-sh/stagehand/pkg/location"
	"github.com/stagehand-sh/stagehand/pkg/logging"
	"github.com/stagehand-sh/stagehand/pkg/manifest"
	"github.com/stagehand-sh/stagehand/pkg/paths"
	"github.com/stagehand-sh/stagehand/pkg/release"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// Spec configures one deploy run. Ref.Version must be concrete; the
// "latest" sentinel is resolved before the lifecycle starts.
type Spec struct {
	Ref types.ArtifactRef

	// Owner and Group are applied to the staged release tree.
	Owner string
	Group string

	// SharedDirs are subdirectories created under shared/.
	SharedDirs []string

	// Symlinks maps a shared-directory key to a path under the release
	// root that should link to it.
	Symlinks map[string]string

	// Keep is the number of historical releases retained by pruning.
	Keep int

	// Force redeploys unconditionally.
	Force bool

	// Migrate enables the migration hooks for this deploy.
	Migrate bool
}

// Result summarizes what one deploy run did.
type Result struct {
	// Version is the concrete version this run targeted.
	Version string

	// Staged is true when the artifact was extracted into the release.
	Staged bool

	// Switched is true when the current symlink was (re)pointed at the
	// release, which also fires the restart hook.
	Switched bool

	// Pruned lists the versions removed by retention.
	Pruned []string
}

// Deployer orchestrates deploy runs against one deploy root.
type Deployer struct {
	fs        types.FS
	paths     paths.Paths
	fetcher   fetch.Fetcher
	extractor *archive.Extractor
	hooks     *hooks.Set
	tracker   *release.Tracker
	engine    *release.Engine
}

// New creates a Deployer. A nil hook set means all hooks are no-ops.
func New(fs types.FS, p paths.Paths, fetcher fetch.Fetcher, extractor *archive.Extractor, hookSet *hooks.Set) *Deployer {
	if hookSet == nil {
		hookSet = &hooks.Set{}
	}
	tracker := release.NewTracker(fs, p)
	return &Deployer{
		fs:        fs,
		paths:     p,
		fetcher:   fetcher,
		extractor: extractor,
		hooks:     hookSet,
		tracker:   tracker,
		engine:    release.NewEngine(fs, p, tracker),
	}
}

// Run executes one deploy lifecycle pass. The configure hook and retention
// pruning always run, even when the decision engine skips staging.
func (d *Deployer) Run(ctx context.Context, spec Spec) (*Result, error) {
	logger := logging.GetLogger("deploy")

	loc, err := location.Resolve(d.fs, spec.Ref)
	if err != nil {
		return nil, err
	}
	version := spec.Ref.Version
	if version == "" || version == types.LatestVersion {
		return nil, errors.Newf(errors.ErrConfigInvalid,
			"version %q must be resolved to a concrete version before deploying", version)
	}

	result := &Result{Version: version}
	releaseDir := d.paths.ReleasePath(version)

	if err := d.hooks.Run(hooks.BeforeDeploy); err != nil {
		return nil, err
	}

	// Init -> DirectoriesReady
	if err := d.prepareDirectories(version, spec.SharedDirs); err != nil {
		return nil, err
	}

	// DirectoriesReady -> Fetched
	cacheFile := d.paths.CachedArtifactPath(version, location.CacheFilename(loc, version))
	if _, err := d.fs.Stat(cacheFile); err != nil {
		if err := d.fetcher.Fetch(ctx, loc, cacheFile, spec.Ref.Checksum); err != nil {
			return nil, err
		}
	} else {
		logger.Debug().Str("cache", cacheFile).Msg("Artifact already cached, skipping fetch")
	}

	// The decision is captured once, before staging. It gates staging,
	// migration, and (partly) the symlink switch, but never the configure
	// hook or pruning.
	shouldDeploy, err := d.engine.ShouldDeploy(version, spec.Force)
	if err != nil {
		return nil, err
	}

	previousActive, err := d.tracker.Current()
	if err != nil {
		return nil, err
	}

	// Fetched -> Staged | SkippedStaging
	if shouldDeploy {
		if err := d.stage(cacheFile, releaseDir, spec); err != nil {
			return nil, err
		}
		result.Staged = true
	} else {
		logger.Info().Str("version", version).Msg("Release unchanged, skipping staging")
	}

	// -> Hooked(configure): always
	if err := d.hooks.Run(hooks.Configure); err != nil {
		return nil, err
	}

	// -> Migrated | SkippedMigrate
	if shouldDeploy && spec.Migrate {
		for _, point := range []hooks.Point{hooks.BeforeMigrate, hooks.Migrate, hooks.AfterMigrate} {
			if err := d.hooks.Run(point); err != nil {
				return nil, err
			}
		}
	}

	// -> Symlinked | SkippedSymlink. The pointer is also repaired when it
	// is stale or the manifest drifted, even if the decision said no-op.
	needsSwitch := shouldDeploy || previousActive != version
	if !needsSwitch {
		changed, err := manifest.HasChanged(d.fs, releaseDir)
		if err != nil {
			return nil, err
		}
		needsSwitch = changed
	}
	if needsSwitch {
		if err := d.switchCurrent(releaseDir); err != nil {
			return nil, err
		}
		result.Switched = true
	}

	// -> Pruned: always. The release deployed this run and the release
	// that was active when the run started are both protected.
	result.Pruned = d.prune(spec.Keep, version, previousActive)

	// -> Done: the manifest is only rewritten when staging happened; a
	// skipped run must not overwrite a manifest that is still accurate.
	if result.Staged {
		fresh, err := manifest.Generate(d.fs, releaseDir)
		if err != nil {
			return nil, err
		}
		if err := manifest.Persist(d.fs, fresh, releaseDir); err != nil {
			return nil, err
		}
	}

	if err := d.hooks.Run(hooks.AfterDeploy); err != nil {
		return nil, err
	}

	logger.Info().
		Str("version", version).
		Bool("staged", result.Staged).
		Bool("switched", result.Switched).
		Strs("pruned", result.Pruned).
		Msg("Deploy run complete")
	return result, nil
}

// prepareDirectories creates the cache, release, and shared directories.
// Pre-existing directories are not an error; any failure here is fatal.
func (d *Deployer) prepareDirectories(version string, sharedDirs []string) error {
	dirs := []string{
		d.paths.ArtifactCacheDir(version),
		d.paths.ReleasePath(version),
		d.paths.SharedDir(),
	}
	for _, shared := range sharedDirs {
		dirs = append(dirs, d.paths.SharedPath(shared))
	}
	for _, dir := range dirs {
		if err := d.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %q", dir)
		}
	}
	return nil
}

// stage extracts the cached artifact into a clean release directory and
// materializes the shared symlinks.
func (d *Deployer) stage(cacheFile, releaseDir string, spec Spec) error {
	if err := d.hooks.Run(hooks.BeforeExtract); err != nil {
		return err
	}

	// Re-staging replaces the release wholesale so files removed from the
	// artifact do not linger from a previous extraction.
	if err := d.fs.RemoveAll(releaseDir); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot clear release directory %q", releaseDir)
	}
	if err := d.fs.MkdirAll(releaseDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot recreate release directory %q", releaseDir)
	}

	if err := d.extractor.Extract(cacheFile, releaseDir, spec.Owner, spec.Group); err != nil {
		return err
	}

	if err := d.hooks.Run(hooks.AfterExtract); err != nil {
		return err
	}

	return d.linkShared(releaseDir, spec.Symlinks)
}

// linkShared links paths under the release to their shared counterparts.
// Every link is independent; the first failure is fatal but links already
// created stay in place.
func (d *Deployer) linkShared(releaseDir string, symlinks map[string]string) error {
	for sharedKey, releaseRel := range symlinks {
		sharedPath := d.paths.SharedPath(sharedKey)
		if err := d.fs.MkdirAll(sharedPath, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create shared directory %q", sharedPath)
		}

		linkPath := filepath.Join(releaseDir, releaseRel)
		if err := d.replaceWithSymlink(sharedPath, linkPath); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate,
				"cannot link %q to shared %q", linkPath, sharedPath)
		}
	}
	return nil
}

// replaceWithSymlink points linkPath at target, replacing whatever the
// extraction put there.
func (d *Deployer) replaceWithSymlink(target, linkPath string) error {
	if _, err := d.fs.Lstat(linkPath); err == nil {
		if err := d.fs.RemoveAll(linkPath); err != nil {
			return err
		}
	}
	return d.fs.Symlink(target, linkPath)
}

// switchCurrent atomically repoints the current symlink at releaseDir by
// creating a sibling link and renaming it over the old one, with the
// restart hooks around it.
func (d *Deployer) switchCurrent(releaseDir string) error {
	if err := d.hooks.Run(hooks.BeforeSymlink); err != nil {
		return err
	}

	current := d.paths.CurrentLink()
	staging := current + ".new"
	_ = d.fs.Remove(staging)
	if err := d.fs.Symlink(releaseDir, staging); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot create symlink %q", staging)
	}
	if err := d.fs.Rename(staging, current); err != nil {
		_ = d.fs.Remove(staging)
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot switch current symlink %q", current)
	}

	return d.hooks.Run(hooks.AfterSymlink)
}
