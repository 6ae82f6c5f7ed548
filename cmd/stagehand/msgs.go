package stagehand

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "A release-based artifact deployer"
	MsgDeployShort     = "Deploy an artifact as a new release"
	MsgStatusShort     = "Show deployed releases"
	MsgGenConfigShort  = "Generate a starter deploy descriptor"
	MsgCompletionShort = "Generate shell completion script"
	MsgVersionShort    = "Print version information"

	// Status messages
	MsgNoCurrent       = "No current release."
	MsgNoReleases      = "No releases found."
	MsgDeployStaged    = "Staged release %s"
	MsgDeploySkipped   = "Release %s already deployed, nothing staged"
	MsgDeploySwitched  = "Current release is now %s"
	MsgDeployPruned    = "Pruned old releases: %s"
	MsgDescriptorWrote = "Wrote %s\n"

	// Error messages
	MsgErrLoadConfig = "failed to load deploy descriptor: %w"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Path to the deploy descriptor"
	MsgFlagForce   = "Deploy even when the release is already current"
	MsgFlagRelease = "Override the artifact version to deploy"
	MsgFlagMigrate = "Run migration hooks for this deploy"
	MsgFlagWrite   = "Write the descriptor to file instead of stdout"
)

// Long messages
const (
	MsgRootLong = `stagehand deploys versioned artifacts into immutable release
directories and switches a "current" symlink atomically, so a running
service always sees a complete release. It fetches artifacts from HTTP
URLs, binary repository coordinates, or local paths, decides whether a
deploy is needed by comparing content manifests, and prunes old
releases past the retention limit.`

	MsgDeployLong = `Deploy reads the deploy descriptor, fetches the artifact into the
cache if needed, and runs the release lifecycle: stage the artifact
into releases/<version>, link shared directories, switch the current
symlink, and prune releases past the retention limit.

A release that is already current with unchanged content is skipped;
use --force to redeploy it anyway.`

	MsgDeployExample = `  # Deploy using ./stagehand.toml
  stagehand deploy

  # Deploy a specific version
  stagehand deploy --release 1.4.2

  # Redeploy the current release from the cached artifact
  stagehand deploy --force`

	MsgStatusLong = `Status lists the releases under the deploy root and marks the one the
current symlink points at.`

	MsgStatusExample = `  # Show releases for the descriptor in the current directory
  stagehand status

  # Show releases for another service
  stagehand status -c /etc/myapp/stagehand.toml`

	MsgGenConfigLong = `Print a starter deploy descriptor to stdout, or write it to
stagehand.toml with -w. Edit the artifact and deploy sections before
the first run.`

	MsgGenConfigExample = `  stagehand gen-config          # print to stdout
  stagehand gen-config -w       # write ./stagehand.toml`

	MsgCompletionLong = `To load completions:

Bash:
  $ source <(stagehand completion bash)

Zsh:
  $ stagehand completion zsh > "${fpath[1]}/_stagehand"

Fish:
  $ stagehand completion fish | source

PowerShell:
  PS> stagehand completion powershell | Out-String | Invoke-Expression`
)
