package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ctleads/harvester/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only case query API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("Starting query API",
			"host", cfg.Host,
			"port", cfg.Port,
		)
		return server.New(cfg, db, log).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
