package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctleads/harvester/internal/extract"
	"github.com/ctleads/harvester/internal/inference"
	"github.com/ctleads/harvester/internal/ledger"
	"github.com/ctleads/harvester/internal/pipeline"
)

var (
	extractDockets []string
	extractLimit   int
	extractOutCSV  string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Mine downloaded summons documents for defendant addresses",
	Long: `extract renders each unprocessed document's pages, asks the
inference service which page holds the parties table, extracts defendant
name/address pairs from the best match and reconciles them into the case
store. Processed dockets are recorded in the ledger directory and skipped
on later runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := inference.NewClient(
			cfg.InferenceAPIURL,
			cfg.InferenceAPIKey,
			cfg.InferenceModel,
			cfg.InferenceRateLimitPerMin,
			log,
		)
		if err != nil {
			return err
		}

		led, err := ledger.New(cfg.LedgerDir)
		if err != nil {
			return err
		}

		var audit *pipeline.AuditWriter
		csvPath := extractOutCSV
		if csvPath == "" {
			csvPath = cfg.AuditCSVPath
		}
		if csvPath != "" {
			audit, err = pipeline.NewAuditWriter(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open audit CSV: %w", err)
			}
			defer audit.Close()
		}

		processor := extract.NewProcessor(
			cfg,
			extract.NewClassifier(client, log),
			extract.NewExtractor(client, log),
			pipeline.NewReconciler(db, log),
			led,
			audit,
			log,
		)
		return processor.Run(context.Background(), extractDockets, extractLimit)
	},
}

func init() {
	extractCmd.Flags().StringArrayVar(&extractDockets, "docket", nil, "only process the specified docket number(s)")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "process at most this many documents (0 = all)")
	extractCmd.Flags().StringVar(&extractOutCSV, "out-csv", "", "append extraction results to this CSV file")
	rootCmd.AddCommand(extractCmd)
}
