// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test deploy-root layout derivation and name validation

package paths_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/paths"
)

func TestLayout(t *testing.T) {
	p, err := paths.New("myapp", "/srv/myapp", "/var/cache/stagehand")
	require.NoError(t, err)

	assert.Equal(t, "/srv/myapp", p.DeployRoot())
	assert.Equal(t, filepath.Join("/srv/myapp", "releases"), p.ReleasesDir())
	assert.Equal(t, filepath.Join("/srv/myapp", "releases", "1.0.0"), p.ReleasePath("1.0.0"))
	assert.Equal(t, filepath.Join("/srv/myapp", "current"), p.CurrentLink())
	assert.Equal(t, filepath.Join("/srv/myapp", "shared"), p.SharedDir())
	assert.Equal(t, filepath.Join("/srv/myapp", "shared", "log"), p.SharedPath("log"))
	assert.Equal(t, filepath.Join("/srv/myapp", "releases", "1.0.0", "manifest.yaml"), p.ManifestPath("1.0.0"))
	assert.Equal(t, filepath.Join("/var/cache/stagehand", "myapp", "1.0.0"), p.ArtifactCacheDir("1.0.0"))
	assert.Equal(t, filepath.Join("/var/cache/stagehand", "myapp", "1.0.0", "myapp-1.0.0.tar.gz"),
		p.CachedArtifactPath("1.0.0", "myapp-1.0.0.tar.gz"))
}

func TestNameValidation(t *testing.T) {
	tests := []struct {
		name    string
		artName string
		wantErr bool
	}{
		{"simple", "myapp", false},
		{"with_separators", "my-app_2.0", false},
		{"leading_dot", ".hidden", true},
		{"path_traversal", "../etc", true},
		{"slash", "a/b", true},
		{"empty", "", true},
		{"spaces", "my app", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := paths.New(tt.artName, "/srv/app", "/tmp/cache")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrNameInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultCacheRoot(t *testing.T) {
	p, err := paths.New("myapp", "/srv/myapp", "")
	require.NoError(t, err)

	assert.Equal(t, paths.DefaultCacheRoot(), p.CacheRoot())
	assert.NotEmpty(t, p.CacheRoot())
}

func TestEmptyDeployRoot(t *testing.T) {
	_, err := paths.New("myapp", "", "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}
