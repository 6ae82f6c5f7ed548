// pkg/config/config_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: temp descriptor files, environment variables
// PURPOSE: Test descriptor layering, validation, and hook wiring

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand-sh/stagehand/pkg/config"
	"github.com/stagehand-sh/stagehand/pkg/errors"
)

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stagehand.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalDescriptor = `
[artifact]
name = "myapp"
location = "https://files.example.com/myapp-1.0.0.tar.gz"
version = "1.0.0"

[deploy]
root = "/srv/myapp"
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := config.Load(writeDescriptor(t, minimalDescriptor))
	require.NoError(t, err)

	assert.Equal(t, "myapp", cfg.Artifact.Name)
	assert.Equal(t, "1.0.0", cfg.Artifact.Version)
	assert.Equal(t, "/srv/myapp", cfg.Deploy.Root)

	// defaults fill the rest
	assert.Equal(t, 2, cfg.Deploy.Keep)
	assert.False(t, cfg.Deploy.Force)
	assert.True(t, cfg.Repository.SSLVerify)
}

func TestLoadFull(t *testing.T) {
	cfg, err := config.Load(writeDescriptor(t, `
[artifact]
name = "myapp"
location = "com.example:myapp:1.2.0:tgz"
version = "1.2.0"
checksum = "deadbeef"

[deploy]
root = "/srv/myapp"
cache_root = "/var/cache/stagehand"
owner = "deploy"
group = "deploy"
shared_dirs = ["log", "pids"]
keep = 5
migrate = true

[deploy.symlinks]
log = "log"
system = "public/system"

[repository]
url = "https://repo.example.com/releases"
ssl_verify = false

[hooks]
configure = "ln -sf ../../shared/config.yml config.yml"
after_symlink = "systemctl restart myapp"
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"log", "pids"}, cfg.Deploy.SharedDirs)
	assert.Equal(t, map[string]string{"log": "log", "system": "public/system"}, cfg.Deploy.Symlinks)
	assert.Equal(t, 5, cfg.Deploy.Keep)
	assert.True(t, cfg.Deploy.Migrate)
	assert.Equal(t, "https://repo.example.com/releases", cfg.Repository.URL)
	assert.False(t, cfg.Repository.SSLVerify)
	assert.Len(t, cfg.Hooks, 2)

	ref := cfg.Ref()
	assert.Equal(t, "myapp", ref.Name)
	assert.Equal(t, "deadbeef", ref.Checksum)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STAGEHAND_ARTIFACT__VERSION", "2.0.0")
	t.Setenv("STAGEHAND_DEPLOY__KEEP", "7")

	cfg, err := config.Load(writeDescriptor(t, minimalDescriptor))
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", cfg.Artifact.Version)
	assert.Equal(t, 7, cfg.Deploy.Keep)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
	}{
		{"missing_name", `
[artifact]
location = "/a.tar.gz"
version = "1.0.0"
[deploy]
root = "/srv/app"
`},
		{"missing_location", `
[artifact]
name = "myapp"
version = "1.0.0"
[deploy]
root = "/srv/app"
`},
		{"missing_root", `
[artifact]
name = "myapp"
location = "/a.tar.gz"
version = "1.0.0"
`},
		{"negative_keep", `
[artifact]
name = "myapp"
location = "/a.tar.gz"
version = "1.0.0"
[deploy]
root = "/srv/app"
keep = -1
`},
		{"unknown_hook", `
[artifact]
name = "myapp"
location = "/a.tar.gz"
version = "1.0.0"
[deploy]
root = "/srv/app"
[hooks]
on_fire = "echo no"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeDescriptor(t, tt.descriptor))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
		})
	}
}

func TestVersionDefaultsToLatest(t *testing.T) {
	cfg, err := config.Load(writeDescriptor(t, `
[artifact]
name = "myapp"
location = "com.example:myapp:latest"

[deploy]
root = "/srv/myapp"
`))
	require.NoError(t, err)
	assert.Equal(t, "latest", cfg.Artifact.Version)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}
