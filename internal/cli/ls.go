package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(lsCmd)
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the catalog for this host",
	Long:  "Shows every catalog entry with its candidate package ids and probe configuration, without resolving anything.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newHostEnv()
		if err != nil {
			return err
		}
		for _, t := range env.tools {
			var line strings.Builder
			fmt.Fprintf(&line, "- %s", t.Name)
			if len(t.CandidateIDs) > 0 {
				fmt.Fprintf(&line, ": %s", strings.Join(t.CandidateIDs, ", "))
			}
			if t.LocalCommand != "" {
				fmt.Fprintf(&line, " · probe `%s %s`", t.LocalCommand, strings.Join(t.VersionArgs, " "))
			}
			if t.MachineWide {
				line.WriteString(" · machine-wide")
			}
			fmt.Println(line.String())
		}
		for _, m := range env.modules {
			fmt.Printf("- %s (PowerShell module, expected under %s)\n", m.Name, m.PathFragment)
		}
		return nil
	},
}
