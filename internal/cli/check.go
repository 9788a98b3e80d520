package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"envctl/internal/manifest"
	"envctl/internal/provision"
	"envctl/internal/report"
	"envctl/internal/system"
)

var (
	checkWatch   bool
	checkTimeout time.Duration
)

func init() {
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "re-run verification when the manifest changes")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", provision.DefaultQueryTimeout, "per-query package manager timeout")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [tool...]",
	Short: "Verify installation state without installing anything",
	Long: "Resolves each catalog item against its local command, the package manager " +
		"and the installed-software manifest, and prints an OK/WARN/FAIL table. " +
		"Verification is informational: missing tools do not fail the process.",
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newHostEnv()
		if err != nil {
			return err
		}
		env.resolver.QueryTimeout = checkTimeout

		run := func() {
			tools, unknown := provision.SelectTools(env.tools, args)
			for _, name := range unknown {
				system.Logger.Warn("unknown tool name", "name", name)
			}
			modules := env.modules
			if len(args) > 0 {
				modules = nil // explicit tool selection skips module checks
			}
			rep := env.resolver.VerifyAll(cmd.Context(), tools, modules)
			fmt.Print(report.Table(rep.Results))
			fmt.Println(report.Summary(rep))
		}
		run()

		if !checkWatch {
			return nil
		}
		p, _ := manifest.Path()
		system.Logger.Info("watching manifest", "path", p)
		err = manifest.Watch(cmd.Context(), func() {
			system.Logger.Info("manifest changed; re-checking")
			if fresh, ferr := newHostEnv(); ferr == nil {
				fresh.resolver.QueryTimeout = checkTimeout
				env = fresh
			}
			run()
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
