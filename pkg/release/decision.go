package release

import (
	"github.com/stagehand-sh/stagehand/pkg/logging"
	"github.com/stagehand-sh/stagehand/pkg/manifest"
	"github.com/stagehand-sh/stagehand/pkg/paths"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// Engine decides whether a deploy must occur.
type Engine struct {
	fs      types.FS
	paths   paths.Paths
	tracker *Tracker
}

// NewEngine creates a decision engine over the given deploy layout.
func NewEngine(fs types.FS, p paths.Paths, tracker *Tracker) *Engine {
	return &Engine{fs: fs, paths: p, tracker: tracker}
}

// ShouldDeploy evaluates the deploy decision table, in order:
//
//  1. force always deploys.
//  2. Nothing installed (no current symlink) always deploys.
//  3. A version never installed before always deploys.
//  4. A rollback to a previously installed version falls through to
//     manifest comparison.
//  5. Redeploying the active version falls through to manifest comparison.
//  6. Manifest comparison: the *target* release directory's on-disk
//     contents against its last persisted manifest. A missing manifest
//     deploys; any drift deploys; otherwise the deploy is skipped.
//
// Manifest comparison is only ever applied to a release directory that
// already exists on disk.
func (e *Engine) ShouldDeploy(desired string, force bool) (bool, error) {
	logger := logging.GetLogger("decision")

	if force {
		logger.Info().Str("version", desired).Msg("Force flag set, deploying")
		return true, nil
	}

	current, err := e.tracker.Current()
	if err != nil {
		return false, err
	}
	if current == "" {
		logger.Info().Str("version", desired).Msg("No release installed, deploying")
		return true, nil
	}

	if desired != current {
		previous, err := e.tracker.PreviousVersions()
		if err != nil {
			return false, err
		}
		if !previous[desired] {
			logger.Info().
				Str("version", desired).
				Str("current", current).
				Msg("Version never installed, deploying")
			return true, nil
		}
		// Rollback to a previously installed version: trust the manifest.
	}

	changed, err := manifest.HasChanged(e.fs, e.paths.ReleasePath(desired))
	if err != nil {
		return false, err
	}
	logger.Info().
		Str("version", desired).
		Str("current", current).
		Bool("manifestChanged", changed).
		Msg("Decision from manifest comparison")
	return changed, nil
}
