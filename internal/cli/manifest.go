package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"envctl/internal/manifest"
)

func init() {
	manifestCmd.AddCommand(manifestSchemaCmd)
	manifestCmd.AddCommand(manifestPathCmd)
	rootCmd.AddCommand(manifestCmd)
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Work with the user catalog overlay",
}

var manifestSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema for manifest.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := manifest.MarshalSchema(manifest.Schema())
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	},
}

var manifestPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the manifest file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := manifest.Path()
		if err != nil {
			return err
		}
		fmt.Println(p)
		return nil
	},
}
