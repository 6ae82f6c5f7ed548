package stagehand

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/stagehand-sh/stagehand/pkg/config"
	"github.com/stagehand-sh/stagehand/pkg/errors"
)

const descriptorHeader = `# stagehand deploy descriptor.
# Every key can be overridden by STAGEHAND_-prefixed environment
# variables; nested keys use a double underscore,
# e.g. STAGEHAND_DEPLOY__KEEP=5.

`

// starterDescriptor is the template emitted by gen-config. Values are
// placeholders meant to be edited before the first deploy.
func starterDescriptor() config.Config {
	return config.Config{
		Artifact: config.ArtifactConfig{
			Name:     "myapp",
			Location: "com.example:myapp:latest",
			Version:  "latest",
		},
		Deploy: config.DeployConfig{
			Root:       "/srv/myapp",
			SharedDirs: []string{"log"},
			Symlinks:   map[string]string{"log": "log"},
			Keep:       2,
		},
		Repository: config.RepositoryConfig{
			URL:       "https://repo.example.com/releases",
			SSLVerify: true,
		},
		Hooks: map[string]string{
			"after_symlink": "systemctl restart myapp",
		},
	}
}

func newGenConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		Example: MsgGenConfigExample,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			starter := starterDescriptor()
			body, err := toml.Marshal(&starter)
			if err != nil {
				return errors.Wrap(err, errors.ErrConfigLoad, "failed to render starter descriptor")
			}
			content := descriptorHeader + string(body)

			write, _ := cmd.Flags().GetBool("write")
			if !write {
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}

			if _, err := os.Stat(DefaultDescriptor); err == nil {
				return errors.Newf(errors.ErrFileCreate, "%s already exists", DefaultDescriptor)
			}
			if err := os.WriteFile(DefaultDescriptor, []byte(content), 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", DefaultDescriptor)
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgDescriptorWrote, DefaultDescriptor)
			return nil
		},
	}

	cmd.Flags().BoolP("write", "w", false, MsgFlagWrite)

	return cmd
}
