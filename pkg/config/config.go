// Package config loads the stagehand deploy descriptor. Configuration is
// layered: embedded defaults, then the descriptor file (stagehand.toml),
// then STAGEHAND_-prefixed environment variables. Nested keys in env vars
// use a double underscore, e.g. STAGEHAND_REPOSITORY__SSL_VERIFY.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/hooks"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "STAGEHAND_"

// Config is the full deploy descriptor.
type Config struct {
	Artifact   ArtifactConfig    `koanf:"artifact" toml:"artifact"`
	Deploy     DeployConfig      `koanf:"deploy" toml:"deploy"`
	Repository RepositoryConfig  `koanf:"repository" toml:"repository"`
	Hooks      map[string]string `koanf:"hooks" toml:"hooks,omitempty"`
}

// ArtifactConfig identifies what to deploy.
type ArtifactConfig struct {
	Name     string `koanf:"name" toml:"name,omitempty"`
	Location string `koanf:"location" toml:"location,omitempty"`
	Version  string `koanf:"version" toml:"version,omitempty"`
	Checksum string `koanf:"checksum" toml:"checksum,omitempty"`
}

// DeployConfig controls where and how releases are staged.
type DeployConfig struct {
	Root       string            `koanf:"root" toml:"root,omitempty"`
	CacheRoot  string            `koanf:"cache_root" toml:"cache_root,omitempty"`
	Owner      string            `koanf:"owner" toml:"owner,omitempty"`
	Group      string            `koanf:"group" toml:"group,omitempty"`
	SharedDirs []string          `koanf:"shared_dirs" toml:"shared_dirs,omitempty"`
	Symlinks   map[string]string `koanf:"symlinks" toml:"symlinks,omitempty"`
	Keep       int               `koanf:"keep" toml:"keep,omitempty"`
	Force      bool              `koanf:"force" toml:"force,omitempty"`
	Migrate    bool              `koanf:"migrate" toml:"migrate,omitempty"`
}

// RepositoryConfig configures the binary repository transport.
type RepositoryConfig struct {
	URL       string `koanf:"url" toml:"url,omitempty"`
	SSLVerify bool   `koanf:"ssl_verify" toml:"ssl_verify,omitempty"`
}

// Load reads the descriptor at path, layered over the embedded defaults
// and under any environment overrides. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load descriptor %q", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the descriptor for the hard requirements every deploy
// run needs.
func (c *Config) Validate() error {
	if c.Artifact.Name == "" {
		return errors.New(errors.ErrConfigInvalid, "artifact.name is required")
	}
	if c.Artifact.Location == "" {
		return errors.New(errors.ErrConfigInvalid, "artifact.location is required")
	}
	if c.Artifact.Version == "" {
		return errors.New(errors.ErrConfigInvalid, "artifact.version is required")
	}
	if c.Deploy.Root == "" {
		return errors.New(errors.ErrConfigInvalid, "deploy.root is required")
	}
	if c.Deploy.Keep < 0 {
		return errors.Newf(errors.ErrConfigInvalid, "deploy.keep must not be negative, got %d", c.Deploy.Keep)
	}
	for name := range c.Hooks {
		if !validHookName(name) {
			return errors.Newf(errors.ErrConfigInvalid, "unknown hook %q", name)
		}
	}
	return nil
}

// Ref builds the artifact reference described by the descriptor.
func (c *Config) Ref() types.ArtifactRef {
	return types.ArtifactRef{
		Name:     c.Artifact.Name,
		Location: c.Artifact.Location,
		Version:  c.Artifact.Version,
		Checksum: c.Artifact.Checksum,
	}
}

// BuildHooks turns the descriptor's hook commands into a hook set. Each
// command runs through the platform shell from workdir.
func (c *Config) BuildHooks(platform types.Platform, workdir string) *hooks.Set {
	set := &hooks.Set{}
	for name, command := range c.Hooks {
		set.Register(hooks.Point(name), hooks.Command(platform, workdir, command))
	}
	return set
}

func validHookName(name string) bool {
	for _, point := range hooks.Points {
		if string(point) == name {
			return true
		}
	}
	return false
}

// String renders a short human summary, used in verbose CLI output.
func (c *Config) String() string {
	return fmt.Sprintf("%s %s from %s -> %s",
		c.Artifact.Name, c.Artifact.Version, c.Artifact.Location, c.Deploy.Root)
}
