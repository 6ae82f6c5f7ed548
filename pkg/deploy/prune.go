package deploy

import (
	"github.com/stagehand-sh/stagehand/pkg/logging"
)

// prune deletes historical releases beyond the keep count, oldest first,
// along with their cache directories. The release deployed this run and the
// previously active release are never candidates. Deletion is best-effort:
// a failure on one entry is logged and the rest are still attempted, since
// pruning is cleanup unrelated to deploy correctness.
func (d *Deployer) prune(keep int, deployed, previousActive string) []string {
	logger := logging.GetLogger("deploy.prune")

	history, err := d.tracker.History()
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot read release history, skipping pruning")
		return nil
	}

	candidates := history[:0:0]
	for _, rel := range history {
		if rel.Version == deployed || rel.Version == previousActive {
			continue
		}
		candidates = append(candidates, rel)
	}

	excess := len(candidates) - keep
	if excess <= 0 {
		return nil
	}

	var pruned []string
	for _, victim := range candidates[:excess] {
		logger.Info().Str("version", victim.Version).Msg("Pruning old release")

		if err := d.fs.RemoveAll(victim.Path); err != nil {
			logger.Warn().Err(err).Str("version", victim.Version).Msg("Cannot delete release directory")
			continue
		}
		if err := d.fs.RemoveAll(d.paths.ArtifactCacheDir(victim.Version)); err != nil {
			logger.Warn().Err(err).Str("version", victim.Version).Msg("Cannot delete cached artifact")
		}
		pruned = append(pruned, victim.Version)
	}
	return pruned
}
