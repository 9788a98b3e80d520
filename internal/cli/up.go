package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"envctl/internal/provision"
	"envctl/internal/report"
	"envctl/internal/system"
)

var upYes bool

func init() {
	upCmd.Flags().BoolVarP(&upYes, "yes", "y", false, "install without confirmation")
	rootCmd.AddCommand(upCmd)
}

var upCmd = &cobra.Command{
	Use:   "up [tool|all]...",
	Short: "Install whatever is missing",
	Long: "Resolves every catalog item, installs the missing ones through the host " +
		"package manager and the PowerShell gallery, then re-resolves each install " +
		"to confirm it took. The process exits non-zero when any install fails.",
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newHostEnv()
		if err != nil {
			return err
		}
		// A name can select from either catalog; it is unknown only when
		// both catalogs miss it.
		tools, toolUnknown := provision.SelectTools(env.tools, args)
		modules, modUnknown := provision.SelectModules(env.modules, args)
		missedByModules := make(map[string]bool, len(modUnknown))
		for _, name := range modUnknown {
			missedByModules[name] = true
		}
		for _, name := range toolUnknown {
			if missedByModules[name] {
				system.Logger.Warn("unknown tool or module name", "name", name)
			}
		}

		// Verify first so the confirmation names exactly what will change.
		pre := env.resolver.VerifyAll(cmd.Context(), tools, modules)
		var missing []string
		for _, res := range pre.Results {
			if res.Status == provision.StatusNotInstalled {
				missing = append(missing, res.Tool)
			}
		}
		if len(missing) == 0 {
			fmt.Print(report.Table(pre.Results))
			fmt.Println(report.Summary(pre))
			fmt.Println("  nothing to install")
			return nil
		}
		if !upYes {
			confirm := false
			form := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Install %d missing item(s)?", len(missing))).
					Description(strings.Join(missing, ", ")).
					Value(&confirm),
			))
			if err := form.Run(); err != nil {
				return err
			}
			if !confirm {
				fmt.Println("aborted")
				return nil
			}
		}

		rep := env.resolver.ApplyAll(cmd.Context(), tools, modules)
		fmt.Print(report.Table(rep.Results))
		fmt.Println(report.Summary(rep))
		if rep.RebootNeeded {
			system.Logger.Warn("a restart is required to finish provisioning")
		}
		if !rep.OK() {
			return fmt.Errorf("%d item(s) failed to install: %s",
				len(rep.Failed), strings.Join(rep.Failed, ", "))
		}
		return nil
	},
}
