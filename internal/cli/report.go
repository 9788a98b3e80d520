package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"envctl/internal/report"
	appver "envctl/internal/version"
)

var reportRender bool

func init() {
	reportCmd.Flags().BoolVar(&reportRender, "render", false, "pretty-print the report in the terminal")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a markdown provisioning report",
	Long:  "Runs a verification pass and emits the result as markdown, suitable for pasting into an onboarding ticket.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newHostEnv()
		if err != nil {
			return err
		}
		rep := env.resolver.VerifyAll(cmd.Context(), env.tools, env.modules)
		md := report.Markdown(rep, appver.AppVersion)
		if !reportRender {
			fmt.Print(md)
			return nil
		}
		out, err := report.Render(md)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}
