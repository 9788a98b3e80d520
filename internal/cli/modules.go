package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"envctl/internal/psgallery"
	"envctl/internal/report"
)

func init() {
	modulesCmd.AddCommand(modulesLsCmd)
	modulesCmd.AddCommand(modulesUpCmd)
	rootCmd.AddCommand(modulesCmd)
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Check and install PowerShell modules",
}

var modulesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Show installation state of every catalog module",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newHostEnv()
		if err != nil {
			return err
		}
		rep := env.resolver.VerifyAll(cmd.Context(), nil, env.modules)
		fmt.Print(report.Table(rep.Results))
		fmt.Println(report.Summary(rep))
		return nil
	},
}

var modulesUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Install missing modules machine-wide",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newHostEnv()
		if err != nil {
			return err
		}
		// Installing modules needs a PowerShell host; verification can limp
		// along without one, installs cannot.
		if env.resolver.Gallery == nil {
			return psgallery.ErrNoGallery
		}
		rep := env.resolver.ApplyAll(cmd.Context(), nil, env.modules)
		fmt.Print(report.Table(rep.Results))
		fmt.Println(report.Summary(rep))
		if !rep.OK() {
			return fmt.Errorf("%d module(s) failed to install: %s",
				len(rep.Failed), strings.Join(rep.Failed, ", "))
		}
		return nil
	},
}
