package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctleads/harvester/internal/geocode"
	"github.com/ctleads/harvester/internal/pipeline"
	"github.com/ctleads/harvester/internal/scraper"
)

var scrapeLimit int

var scrapeCmd = &cobra.Command{
	Use:   "scrape [towns...]",
	Short: "Walk the portal's property-address search for each town",
	Long: `scrape submits each town into the portal's search form, walks the
result pager to exhaustion, extracts case and party data from every detail
page and stores new cases. Towns default to ALLOWED_TOWNS from the
environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		towns := args
		if len(towns) == 0 {
			towns = cfg.AllowedTowns
		}
		if len(towns) == 0 {
			return fmt.Errorf("no towns given and ALLOWED_TOWNS is empty")
		}
		if scrapeLimit > 0 && len(towns) > scrapeLimit {
			towns = towns[:scrapeLimit]
		}

		session, err := scraper.NewSession(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to start browsing session: %w", err)
		}
		defer session.Close()

		var resolver *geocode.Resolver
		if cfg.GeocodeEnabled {
			resolver = geocode.NewResolver(cfg.GeocodeCachePath, cfg.GeocodeUserAgent, log)
		}

		navigator := scraper.NewNavigator(cfg, session, log)
		persister := pipeline.NewPersister(db, resolver, log)

		totalInserted := 0
		for _, town := range towns {
			log.Info("Scraping town", "town", town)
			var rows []scraper.CaseRow
			err := navigator.ScrapeTown(town, func(row scraper.CaseRow) error {
				rows = append(rows, row)
				return nil
			})
			if err != nil {
				log.Error("Town scrape failed", "town", town, "error", err)
				continue
			}

			inserted, err := persister.SaveCases(rows)
			if err != nil {
				log.Error("Failed to persist town", "town", town, "error", err)
				continue
			}
			log.Info("Town finished", "town", town, "rows", len(rows), "inserted", inserted)
			totalInserted += inserted
		}

		log.Info("Scrape finished", "towns", len(towns), "inserted_cases", totalInserted)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "limit towns processed (0 = all)")
	rootCmd.AddCommand(scrapeCmd)
}
