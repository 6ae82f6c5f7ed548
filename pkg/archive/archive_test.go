// pkg/archive/archive_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: stub command runner, afero in-memory filesystem
// PURPOSE: Test extension-family dispatch and staging commands

package archive_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand-sh/stagehand/pkg/archive"
	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/filesystem"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// recordingRunner records issued commands instead of executing them.
type recordingRunner struct {
	commands [][]string
	fail     bool
}

func (r *recordingRunner) Run(name string, args ...string) error {
	r.commands = append(r.commands, append([]string{name}, args...))
	if r.fail {
		return assert.AnError
	}
	return nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     archive.Family
		wantErr  bool
	}{
		{"tar", "app.tar", archive.FamilyTar, false},
		{"tar_gz", "app-1.0.0.tar.gz", archive.FamilyTar, false},
		{"tgz", "app.tgz", archive.FamilyTar, false},
		{"tar_bz2", "app.tar.bz2", archive.FamilyTar, false},
		{"tar_xz", "app.tar.xz", archive.FamilyTar, false},
		{"zip", "app.zip", archive.FamilyZip, false},
		{"jar", "myapp-1.0.0.jar", archive.FamilyZip, false},
		{"war", "myapp.war", archive.FamilyZip, false},
		{"uppercase", "APP.TAR.GZ", archive.FamilyTar, false},
		{"plain_binary", "myapp-1.0.0", archive.FamilyFile, false},
		{"text_file", "app.txt", archive.FamilyFile, false},
		{"bare_gzip", "app.gz", "", true},
		{"rar", "app.rar", "", true},
		{"seven_zip", "app.7z", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			family, err := archive.Classify(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveUnsupported))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, family)
			}
		})
	}
}

func TestExtractTar(t *testing.T) {
	runner := &recordingRunner{}
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	e := archive.NewExtractor(fs, types.Platform{OS: "linux"}, runner)

	require.NoError(t, e.Extract("/cache/app-1.0.0.tar.gz", "/srv/app/releases/1.0.0", "", ""))

	require.Len(t, runner.commands, 1)
	assert.Equal(t, []string{"tar", "-xf", "/cache/app-1.0.0.tar.gz", "-C", "/srv/app/releases/1.0.0"},
		runner.commands[0])
}

func TestExtractZip(t *testing.T) {
	runner := &recordingRunner{}
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	e := archive.NewExtractor(fs, types.Platform{OS: "linux"}, runner)

	require.NoError(t, e.Extract("/cache/app.zip", "/srv/app/releases/1.0.0", "", ""))

	require.Len(t, runner.commands, 1)
	assert.Equal(t, []string{"unzip", "-o", "-q", "/cache/app.zip", "-d", "/srv/app/releases/1.0.0"},
		runner.commands[0])
}

func TestExtractPlainFileCopies(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/cache/myapp-1.0.0", []byte("binary"), 0644))
	fs := filesystem.NewAferoFS(mem)

	runner := &recordingRunner{}
	e := archive.NewExtractor(fs, types.Platform{OS: "linux"}, runner)
	require.NoError(t, e.Extract("/cache/myapp-1.0.0", "/srv/app/releases/1.0.0", "", ""))

	assert.Empty(t, runner.commands, "plain files must not invoke host utilities")
	got, err := afero.ReadFile(mem, "/srv/app/releases/1.0.0/myapp-1.0.0")
	require.NoError(t, err)
	assert.Equal(t, []byte("binary"), got)
}

func TestExtractAppliesOwnership(t *testing.T) {
	runner := &recordingRunner{}
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	e := archive.NewExtractor(fs, types.Platform{OS: "linux"}, runner)

	require.NoError(t, e.Extract("/cache/app.tar", "/srv/app/releases/1.0.0", "deploy", "deploy"))

	require.Len(t, runner.commands, 2)
	assert.Equal(t, []string{"chown", "-R", "deploy:deploy", "/srv/app/releases/1.0.0"},
		runner.commands[1])
}

func TestExtractSkipsOwnershipOnWindows(t *testing.T) {
	runner := &recordingRunner{}
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	e := archive.NewExtractor(fs, types.Platform{OS: "windows"}, runner)

	require.NoError(t, e.Extract("/cache/app.zip", "C:/app/releases/1.0.0", "deploy", "deploy"))
	require.Len(t, runner.commands, 1, "no chown on windows")
}

func TestExtractUnsupportedIsFatal(t *testing.T) {
	runner := &recordingRunner{}
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	e := archive.NewExtractor(fs, types.Platform{OS: "linux"}, runner)

	err := e.Extract("/cache/app.rar", "/srv/app/releases/1.0.0", "", "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveUnsupported))
	assert.Empty(t, runner.commands)
}

func TestExtractCommandFailure(t *testing.T) {
	runner := &recordingRunner{fail: true}
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	e := archive.NewExtractor(fs, types.Platform{OS: "linux"}, runner)

	err := e.Extract("/cache/app.tar.gz", "/srv/app/releases/1.0.0", "", "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtractFailed))
}
