package cli

import (
	"github.com/spf13/cobra"

	"envctl/internal/webui/server"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:7333", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only status API",
	Long:  "Exposes provisioning status as JSON over HTTP, for dashboards that poll fleets of workstations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := &server.Server{Addr: serveAddr}
		return srv.Start(cmd.Context())
	},
}
