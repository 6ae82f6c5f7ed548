// pkg/deploy/deploy_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: real filesystem via t.TempDir
// PURPOSE: Test the deploy lifecycle: staging, symlink switch, hooks,
// idempotence, and retention

package deploy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand-sh/stagehand/pkg/archive"
	"github.com/stagehand-sh/stagehand/pkg/deploy"
	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/fetch"
	"github.com/stagehand-sh/stagehand/pkg/filesystem"
	"github.com/stagehand-sh/stagehand/pkg/hooks"
	"github.com/stagehand-sh/stagehand/pkg/manifest"
	"github.com/stagehand-sh/stagehand/pkg/paths"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

type fixture struct {
	fs       types.FS
	paths    paths.Paths
	deployer *deploy.Deployer
	artifact string // local plain-file artifact
	hookLog  *[]hooks.Point
}

// newFixture builds a deployer over a temp deploy root with a local
// plain-file artifact named app.txt and hooks that record their order.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()

	p, err := paths.New("myapp", filepath.Join(root, "deploy"), filepath.Join(root, "cache"))
	require.NoError(t, err)

	artifact := filepath.Join(root, "artifacts", "app.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(artifact), 0755))
	require.NoError(t, os.WriteFile(artifact, []byte("release content"), 0644))

	fs := filesystem.NewOS()
	var hookLog []hooks.Point
	hookSet := &hooks.Set{}
	for _, point := range hooks.Points {
		pt := point
		hookSet.Register(pt, func() error {
			hookLog = append(hookLog, pt)
			return nil
		})
	}

	extractor := archive.NewExtractor(fs, types.Platform{OS: "linux"}, nil)
	fetcher := fetch.NewDispatcher(fs, fetch.Options{SSLVerify: true})

	return &fixture{
		fs:       fs,
		paths:    p,
		deployer: deploy.New(fs, p, fetcher, extractor, hookSet),
		artifact: artifact,
		hookLog:  &hookLog,
	}
}

func (f *fixture) spec(version string) deploy.Spec {
	return deploy.Spec{
		Ref: types.ArtifactRef{
			Name:     "myapp",
			Location: f.artifact,
			Version:  version,
		},
		Keep: 2,
	}
}

func (f *fixture) run(t *testing.T, spec deploy.Spec) *deploy.Result {
	t.Helper()
	result, err := f.deployer.Run(context.Background(), spec)
	require.NoError(t, err)
	return result
}

func currentTarget(t *testing.T, p paths.Paths) string {
	t.Helper()
	target, err := os.Readlink(p.CurrentLink())
	require.NoError(t, err)
	return target
}

func TestFirstDeploy(t *testing.T) {
	f := newFixture(t)

	result := f.run(t, f.spec("1.0.0"))

	assert.True(t, result.Staged)
	assert.True(t, result.Switched)
	assert.Empty(t, result.Pruned)

	// current -> releases/1.0.0
	assert.Equal(t, f.paths.ReleasePath("1.0.0"), currentTarget(t, f.paths))

	// the artifact was staged
	data, err := os.ReadFile(filepath.Join(f.paths.ReleasePath("1.0.0"), "app.txt"))
	require.NoError(t, err)
	assert.Equal(t, "release content", string(data))

	// the manifest records exactly the staged file
	m, err := manifest.Load(f.fs, f.paths.ReleasePath("1.0.0"))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, []string{"app.txt"}, m.Paths())
}

func TestRedeployUnchangedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.run(t, f.spec("1.0.0"))

	manifestPath := f.paths.ManifestPath("1.0.0")
	before, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	*f.hookLog = nil

	result := f.run(t, f.spec("1.0.0"))

	assert.False(t, result.Staged, "identical redeploy must skip staging")
	assert.False(t, result.Switched, "pointer already correct, restart must not fire")

	after, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "manifest must not be rewritten")

	// configure still ran; extract and symlink hooks did not
	assert.Contains(t, *f.hookLog, hooks.Configure)
	assert.NotContains(t, *f.hookLog, hooks.BeforeExtract)
	assert.NotContains(t, *f.hookLog, hooks.AfterSymlink)
}

func TestForceRedeploys(t *testing.T) {
	f := newFixture(t)
	f.run(t, f.spec("1.0.0"))

	spec := f.spec("1.0.0")
	spec.Force = true
	result := f.run(t, spec)

	assert.True(t, result.Staged)
	assert.True(t, result.Switched)
}

func TestDriftedReleaseIsRestaged(t *testing.T) {
	f := newFixture(t)
	f.run(t, f.spec("1.0.0"))

	staged := filepath.Join(f.paths.ReleasePath("1.0.0"), "app.txt")
	require.NoError(t, os.WriteFile(staged, []byte("tampered"), 0644))

	result := f.run(t, f.spec("1.0.0"))
	assert.True(t, result.Staged)

	data, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "release content", string(data), "drift must be healed from the artifact")
}

func TestRollbackRepairsPointerWithoutStaging(t *testing.T) {
	f := newFixture(t)
	f.run(t, f.spec("1.0.0"))
	f.run(t, f.spec("2.0.0"))
	require.Equal(t, f.paths.ReleasePath("2.0.0"), currentTarget(t, f.paths))
	*f.hookLog = nil

	result := f.run(t, f.spec("1.0.0"))

	assert.False(t, result.Staged, "intact rollback target needs no staging")
	assert.True(t, result.Switched, "stale pointer must be repaired")
	assert.Equal(t, f.paths.ReleasePath("1.0.0"), currentTarget(t, f.paths))
	assert.Contains(t, *f.hookLog, hooks.AfterSymlink, "restart fires on pointer repair")
}

func TestHookOrder(t *testing.T) {
	f := newFixture(t)
	spec := f.spec("1.0.0")
	spec.Migrate = true
	f.run(t, spec)

	assert.Equal(t, []hooks.Point{
		hooks.BeforeDeploy,
		hooks.BeforeExtract,
		hooks.AfterExtract,
		hooks.Configure,
		hooks.BeforeMigrate,
		hooks.Migrate,
		hooks.AfterMigrate,
		hooks.BeforeSymlink,
		hooks.AfterSymlink,
		hooks.AfterDeploy,
	}, *f.hookLog)
}

func TestMigrateHooksSkippedWhenDisabled(t *testing.T) {
	f := newFixture(t)
	f.run(t, f.spec("1.0.0"))

	assert.NotContains(t, *f.hookLog, hooks.BeforeMigrate)
	assert.NotContains(t, *f.hookLog, hooks.Migrate)
	assert.NotContains(t, *f.hookLog, hooks.AfterMigrate)
}

func TestHookFailureAborts(t *testing.T) {
	f := newFixture(t)
	failing := &hooks.Set{Configure: func() error { return assert.AnError }}

	extractor := archive.NewExtractor(f.fs, types.Platform{OS: "linux"}, nil)
	fetcher := fetch.NewDispatcher(f.fs, fetch.Options{SSLVerify: true})
	deployer := deploy.New(f.fs, f.paths, fetcher, extractor, failing)

	_, err := deployer.Run(context.Background(), f.spec("1.0.0"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrHookFailed))

	// the run aborted before the symlink switch
	_, statErr := os.Lstat(f.paths.CurrentLink())
	assert.True(t, os.IsNotExist(statErr))
}

func TestSharedSymlinks(t *testing.T) {
	f := newFixture(t)
	spec := f.spec("1.0.0")
	spec.SharedDirs = []string{"log", "pids"}
	spec.Symlinks = map[string]string{"log": "log"}
	f.run(t, spec)

	assert.DirExists(t, f.paths.SharedPath("log"))
	assert.DirExists(t, f.paths.SharedPath("pids"))

	link := filepath.Join(f.paths.ReleasePath("1.0.0"), "log")
	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, f.paths.SharedPath("log"), target)
}

func TestRetention(t *testing.T) {
	f := newFixture(t)

	// seed history the way successive deploys would have left it
	for i, version := range []string{"0.8.0", "0.9.0", "1.0.0"} {
		f.run(t, f.spec(version))
		dir := f.paths.ReleasePath(version)
		mtime := time.Now().Add(time.Duration(i-3) * time.Hour)
		require.NoError(t, os.Chtimes(dir, mtime, mtime))
	}
	require.Equal(t, f.paths.ReleasePath("1.0.0"), currentTarget(t, f.paths))

	spec := f.spec("1.1.0")
	spec.Keep = 1
	result := f.run(t, spec)

	assert.Equal(t, []string{"0.8.0"}, result.Pruned)
	assert.NoDirExists(t, f.paths.ReleasePath("0.8.0"))
	assert.NoDirExists(t, f.paths.ArtifactCacheDir("0.8.0"))
	assert.DirExists(t, f.paths.ReleasePath("0.9.0"))
	assert.DirExists(t, f.paths.ReleasePath("1.0.0"), "the outgoing release joins history, pruned next run")
	assert.Equal(t, f.paths.ReleasePath("1.1.0"), currentTarget(t, f.paths))
}

func TestCachedArtifactSkipsFetch(t *testing.T) {
	f := newFixture(t)
	f.run(t, f.spec("1.0.0"))

	// change the source; a forced redeploy must stage from the cache, not
	// re-fetch the changed source
	require.NoError(t, os.WriteFile(f.artifact, []byte("changed upstream"), 0644))

	spec := f.spec("1.0.0")
	spec.Force = true
	result := f.run(t, spec)
	require.True(t, result.Staged)

	data, err := os.ReadFile(filepath.Join(f.paths.ReleasePath("1.0.0"), "app.txt"))
	require.NoError(t, err)
	assert.Equal(t, "release content", string(data))
}

func TestLatestMustBeResolvedBeforeRun(t *testing.T) {
	f := newFixture(t)
	spec := f.spec(types.LatestVersion)

	_, err := f.deployer.Run(context.Background(), spec)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}

func TestMissingLocalSourceIsFatal(t *testing.T) {
	f := newFixture(t)
	spec := f.spec("1.0.0")
	spec.Ref.Location = filepath.Join(t.TempDir(), "nope.tar.gz")

	_, err := f.deployer.Run(context.Background(), spec)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSourceNotFound))
}
