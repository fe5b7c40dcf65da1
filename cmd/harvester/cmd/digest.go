package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ctleads/harvester/internal/digest"
)

var digestSinceHours int

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Email active subscribers a digest of recently added cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := digest.NewSender(cfg, log)
		if err != nil {
			return err
		}

		service := digest.NewService(db, sender, log)
		since := time.Now().Add(-time.Duration(digestSinceHours) * time.Hour)
		return service.Send(since)
	},
}

func init() {
	digestCmd.Flags().IntVar(&digestSinceHours, "since-hours", 24, "include cases created within this many hours")
	rootCmd.AddCommand(digestCmd)
}
