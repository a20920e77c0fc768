package cli

import (
	"github.com/spf13/cobra"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// Version information, set at build time via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// BuildRootCommand assembles the full `hermit` command tree around app.
// Every subcommand closes over app rather than reading package globals
// (Design Note 9).
func BuildRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "hermit",
		Short: "An air-gapped HD Bitcoin wallet",
		Long: `Hermit reconstructs a root seed on demand from a quorum of SLIP-39
shards, derives signing keys along BIP-32 paths, and signs Partially Signed
Bitcoin Transactions received over an optical (animated QR) channel.

Example:
  hermit wallet unlock
  hermit wallet sign <BASE64_PSBT>
  hermit shards build-family-from-random --threshold 2 --groups 2:3,2:3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(versionCmd())
	root.AddCommand(buildWalletCmd(app))
	root.AddCommand(buildShardsCmd(app))
	for _, c := range buildStoreCmds(app) {
		root.AddCommand(c)
	}

	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out(cmd.OutOrStdout(), "hermit version %s\n", Version)
			out(cmd.OutOrStdout(), "  commit: %s\n", GitCommit)
			out(cmd.OutOrStdout(), "  built:  %s\n", BuildDate)
		},
	}
}

// ExitCode returns the appropriate process exit code for an error.
func ExitCode(err error) int {
	return hermiterr.ExitCode(err)
}
