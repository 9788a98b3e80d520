package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"envctl/internal/app"
	"envctl/internal/system"
)

var rootVerbose bool

var rootCmd = &cobra.Command{
	Use:   "envctl",
	Short: "envctl – developer environment provisioning",
	Long:  "envctl checks and installs the developer tools and PowerShell modules a workstation needs, and reports per-item status.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		system.SetVerbose(rootVerbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default action: launch the TUI dashboard
		return app.Start()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
