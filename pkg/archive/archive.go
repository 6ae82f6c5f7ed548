// Package archive stages a cached artifact into a release directory. Tar
// and zip families are detected by filename extension and unpacked with the
// host's extraction utilities; anything that is not a recognized archive is
// copied into the release as a single file. Compressed formats we have no
// extractor for are a fatal configuration error.
package archive

import (
	"path/filepath"
	"strings"

	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/logging"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// Family is the extraction family an artifact filename maps to.
type Family string

const (
	// FamilyTar covers tar and its compressed variants.
	FamilyTar Family = "tar"

	// FamilyZip covers zip-layout archives, including jar and war.
	FamilyZip Family = "zip"

	// FamilyFile is a non-archive artifact copied into the release as-is.
	FamilyFile Family = "file"
)

var tarSuffixes = []string{".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tbz", ".tbz2", ".tar.xz", ".txz"}

var zipSuffixes = []string{".zip", ".jar", ".war", ".ear"}

// Compressed formats with no extractor on a standard host. These must fail
// loudly instead of being copied in as opaque files.
var unsupportedSuffixes = []string{".gz", ".bz2", ".xz", ".rar", ".7z", ".zst"}

// Classify maps a filename to its extraction family. Suffix matching is
// case-insensitive and checks the tar compound suffixes before the bare
// compression suffixes.
func Classify(filename string) (Family, error) {
	name := strings.ToLower(filepath.Base(filename))

	for _, suffix := range tarSuffixes {
		if strings.HasSuffix(name, suffix) {
			return FamilyTar, nil
		}
	}
	for _, suffix := range zipSuffixes {
		if strings.HasSuffix(name, suffix) {
			return FamilyZip, nil
		}
	}
	for _, suffix := range unsupportedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return "", errors.Newf(errors.ErrArchiveUnsupported,
				"no extractor for artifact %q", filepath.Base(filename))
		}
	}
	return FamilyFile, nil
}

// Extractor stages artifacts using host utilities selected by platform.
type Extractor struct {
	fs       types.FS
	platform types.Platform
	runner   CommandRunner
}

// NewExtractor creates an Extractor. A nil runner uses the real host
// commands.
func NewExtractor(fs types.FS, platform types.Platform, runner CommandRunner) *Extractor {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &Extractor{fs: fs, platform: platform, runner: runner}
}

// Extract stages archivePath into destDir and applies ownership. Archives
// are unpacked with the host utility for their family; plain files are
// copied under their basename.
func (e *Extractor) Extract(archivePath, destDir, owner, group string) error {
	logger := logging.GetLogger("archive")

	family, err := Classify(archivePath)
	if err != nil {
		return err
	}

	logger.Info().
		Str("archive", archivePath).
		Str("dest", destDir).
		Str("family", string(family)).
		Msg("Staging artifact")

	switch family {
	case FamilyTar:
		// tar -xf detects the compression from the file itself
		if err := e.runner.Run("tar", "-xf", archivePath, "-C", destDir); err != nil {
			return errors.Wrapf(err, errors.ErrExtractFailed, "tar extraction of %q failed", archivePath)
		}
	case FamilyZip:
		if err := e.runner.Run("unzip", "-o", "-q", archivePath, "-d", destDir); err != nil {
			return errors.Wrapf(err, errors.ErrExtractFailed, "zip extraction of %q failed", archivePath)
		}
	case FamilyFile:
		if err := e.copyFile(archivePath, destDir); err != nil {
			return err
		}
	}

	return e.applyOwnership(destDir, owner, group)
}

func (e *Extractor) copyFile(src, destDir string) error {
	data, err := e.fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExtractFailed, "cannot read artifact %q", src)
	}
	dest := filepath.Join(destDir, filepath.Base(src))
	if err := e.fs.WriteFile(dest, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrExtractFailed, "cannot copy artifact to %q", dest)
	}
	return nil
}

// applyOwnership chowns the staged tree when an owner is configured.
// Windows has no chown; ownership is silently skipped there.
func (e *Extractor) applyOwnership(destDir, owner, group string) error {
	if owner == "" || e.platform.IsWindows() {
		return nil
	}
	spec := owner
	if group != "" {
		spec = owner + ":" + group
	}
	if err := e.runner.Run("chown", "-R", spec, destDir); err != nil {
		return errors.Wrapf(err, errors.ErrOwnershipSet,
			"cannot set ownership %q on %q", spec, destDir)
	}
	return nil
}
