// Package manifest generates, persists, and compares the content
// fingerprint of a release directory. The manifest is the durable record of
// what was deployed: a mapping from release-relative file path to the SHA-1
// digest of that file's bytes, written as manifest.yaml inside the release.
package manifest

import (
	"crypto/sha1"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/logging"
	"github.com/stagehand-sh/stagehand/pkg/paths"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// Manifest maps release-relative file paths to hex-encoded SHA-1 digests.
type Manifest map[string]string

// Generate walks root recursively and fingerprints every regular,
// non-symlink file, excluding files named manifest.yaml. The result is
// deterministic for identical file contents.
func Generate(fsys types.FS, root string) (Manifest, error) {
	m := make(Manifest)
	if err := walk(fsys, root, "", m); err != nil {
		return nil, err
	}
	return m, nil
}

func walk(fsys types.FS, root, rel string, m Manifest) error {
	dir := filepath.Join(root, rel)
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestGenerate, "cannot read directory %q", dir)
	}

	for _, entry := range entries {
		entryRel := filepath.Join(rel, entry.Name())
		if entry.IsDir() {
			if err := walk(fsys, root, entryRel, m); err != nil {
				return err
			}
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			continue
		}
		if entry.Name() == paths.ManifestFileName {
			continue
		}

		data, err := fsys.ReadFile(filepath.Join(root, entryRel))
		if err != nil {
			return errors.Wrapf(err, errors.ErrManifestGenerate, "cannot read file %q", entryRel)
		}
		sum := sha1.Sum(data)
		m[filepath.ToSlash(entryRel)] = hex.EncodeToString(sum[:])
	}
	return nil
}

// Persist serializes the manifest to <root>/manifest.yaml, overwriting any
// existing file.
func Persist(fsys types.FS, m Manifest, root string) error {
	logger := logging.GetLogger("manifest")

	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, errors.ErrManifestWrite, "cannot serialize manifest")
	}

	target := filepath.Join(root, paths.ManifestFileName)
	if err := fsys.WriteFile(target, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "cannot write manifest %q", target)
	}

	logger.Debug().Str("path", target).Int("files", len(m)).Msg("Persisted manifest")
	return nil
}

// Load reads <root>/manifest.yaml. A missing file is not an error: it is
// the normal state for a never-before-deployed release, so Load returns
// (nil, nil).
func Load(fsys types.FS, root string) (Manifest, error) {
	data, err := fsys.ReadFile(filepath.Join(root, paths.ManifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read manifest in %q", root)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "cannot parse manifest in %q", root)
	}
	return m, nil
}

// Equal reports structural equality of two manifests: equivalent keysets
// and equivalent digests.
func Equal(a, b Manifest) bool {
	if len(a) != len(b) {
		return false
	}
	for path, hash := range a {
		if other, ok := b[path]; !ok || other != hash {
			return false
		}
	}
	return true
}

// HasChanged reports whether the on-disk contents of root differ from its
// persisted manifest. A missing manifest counts as changed.
func HasChanged(fsys types.FS, root string) (bool, error) {
	recorded, err := Load(fsys, root)
	if err != nil {
		return false, err
	}
	if recorded == nil {
		return true, nil
	}

	fresh, err := Generate(fsys, root)
	if err != nil {
		return false, err
	}
	return !Equal(recorded, fresh), nil
}

// Paths returns the sorted list of file paths in the manifest.
func (m Manifest) Paths() []string {
	out := make([]string, 0, len(m))
	for path := range m {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
