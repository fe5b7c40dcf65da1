package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctleads/harvester/internal/scraper"
)

var downloadLimit int

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download summons documents for cases missing one on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := scraper.NewSession(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to start browsing session: %w", err)
		}
		defer session.Close()

		limit := downloadLimit
		if limit == 0 {
			limit = cfg.DownloadLimit
		}

		downloader := scraper.NewDownloader(cfg, db, session, log)
		return downloader.Run(limit)
	},
}

func init() {
	downloadCmd.Flags().IntVar(&downloadLimit, "limit", 0, "max documents to download this run (0 = config default)")
	rootCmd.AddCommand(downloadCmd)
}
