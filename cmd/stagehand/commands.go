package stagehand

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stagehand-sh/stagehand/internal/version"
	"github.com/stagehand-sh/stagehand/pkg/archive"
	"github.com/stagehand-sh/stagehand/pkg/config"
	"github.com/stagehand-sh/stagehand/pkg/deploy"
	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/fetch"
	"github.com/stagehand-sh/stagehand/pkg/filesystem"
	"github.com/stagehand-sh/stagehand/pkg/location"
	"github.com/stagehand-sh/stagehand/pkg/logging"
	"github.com/stagehand-sh/stagehand/pkg/paths"
	"github.com/stagehand-sh/stagehand/pkg/release"
	"github.com/stagehand-sh/stagehand/pkg/types"
)

// DefaultDescriptor is the descriptor filename looked up in the current
// directory when --config is not given.
const DefaultDescriptor = "stagehand.toml"

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "stagehand",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Add all commands
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// loadConfig reads the descriptor named by the command's --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deploy",
		Short:   MsgDeployShort,
		Long:    MsgDeployLong,
		Example: MsgDeployExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Flags override the descriptor for this run only
			if force, _ := cmd.Flags().GetBool("force"); force {
				cfg.Deploy.Force = true
			}
			if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
				cfg.Deploy.Migrate = true
			}
			if rel, _ := cmd.Flags().GetString("release"); rel != "" {
				cfg.Artifact.Version = rel
			}

			return runDeploy(cmd, cfg)
		},
	}

	cmd.Flags().StringP("config", "c", DefaultDescriptor, MsgFlagConfig)
	cmd.Flags().Bool("force", false, MsgFlagForce)
	cmd.Flags().Bool("migrate", false, MsgFlagMigrate)
	cmd.Flags().StringP("release", "r", "", MsgFlagRelease)

	return cmd
}

func runDeploy(cmd *cobra.Command, cfg *config.Config) error {
	logger := logging.GetLogger("cmd.deploy")
	done := logging.LogOperationStart(logger, "deploy")
	defer done()

	logger.Info().Str("descriptor", cfg.String()).Msg("Starting deploy")

	fs := filesystem.NewOS()
	p, err := paths.New(cfg.Artifact.Name, cfg.Deploy.Root, cfg.Deploy.CacheRoot)
	if err != nil {
		return err
	}

	dispatcher := fetch.NewDispatcher(fs, fetch.Options{
		RepositoryURL: cfg.Repository.URL,
		SSLVerify:     cfg.Repository.SSLVerify,
	})

	ref := cfg.Ref()
	loc, err := location.Resolve(fs, ref)
	if err != nil {
		return err
	}

	if ref.Version == types.LatestVersion {
		if !loc.IsRepository() {
			return errors.New(errors.ErrLatestUnresolvable,
				"version \"latest\" requires a repository coordinate location")
		}
		resolved, err := dispatcher.Repository().ResolveLatest(cmd.Context(), loc)
		if err != nil {
			return err
		}
		logger.Info().Str("version", resolved).Msg("Resolved latest version")
		ref.Version = resolved
	}

	platform := types.CurrentPlatform()
	deployer := deploy.New(fs, p,
		dispatcher,
		archive.NewExtractor(fs, platform, nil),
		cfg.BuildHooks(platform, cfg.Deploy.Root))

	result, err := deployer.Run(cmd.Context(), deploy.Spec{
		Ref:        ref,
		Owner:      cfg.Deploy.Owner,
		Group:      cfg.Deploy.Group,
		SharedDirs: cfg.Deploy.SharedDirs,
		Symlinks:   cfg.Deploy.Symlinks,
		Keep:       cfg.Deploy.Keep,
		Force:      cfg.Deploy.Force,
		Migrate:    cfg.Deploy.Migrate,
	})
	if err != nil {
		return err
	}

	if result.Staged {
		pterm.Success.Printfln(MsgDeployStaged, result.Version)
	} else {
		pterm.Info.Printfln(MsgDeploySkipped, result.Version)
	}
	if result.Switched {
		pterm.Success.Printfln(MsgDeploySwitched, result.Version)
	}
	if len(result.Pruned) > 0 {
		pterm.Info.Printfln(MsgDeployPruned, strings.Join(result.Pruned, ", "))
	}

	return nil
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Example: MsgStatusExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			fs := filesystem.NewOS()
			p, err := paths.New(cfg.Artifact.Name, cfg.Deploy.Root, cfg.Deploy.CacheRoot)
			if err != nil {
				return err
			}

			tracker := release.NewTracker(fs, p)
			current, err := tracker.Current()
			if err != nil {
				return err
			}
			history, err := tracker.History()
			if err != nil {
				return err
			}

			if current == "" && len(history) == 0 {
				pterm.Info.Println(MsgNoReleases)
				return nil
			}

			rows := pterm.TableData{{"VERSION", "DEPLOYED", ""}}
			for _, rel := range history {
				rows = append(rows, []string{rel.Version, rel.ModTime.Format("2006-01-02 15:04:05"), ""})
			}
			if current != "" {
				// History excludes the active release; list it last
				rows = append(rows, []string{current, "", "current"})
			}

			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}

	cmd.Flags().StringP("config", "c", DefaultDescriptor, MsgFlagConfig)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stagehand version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
