package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ctleads/harvester/internal/config"
	"github.com/ctleads/harvester/internal/database"
	"github.com/ctleads/harvester/pkg/logger"
)

var (
	cfg *config.Config
	log *logger.Logger
	db  *gorm.DB
)

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "Harvest CT civil case records and mine summons documents",
	Long: `harvester drives the Connecticut civil inquiry portal to collect
case and party records per town, downloads each case's summons document,
and mines those documents with a vision model to recover defendant names
and mailing addresses, reconciling the results into the case store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log, err = logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err = database.Initialize(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
