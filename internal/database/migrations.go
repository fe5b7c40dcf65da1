package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations executes all database migrations
func RunMigrations(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// createIndexes creates database indexes
func createIndexes(db *gorm.DB) error {
	// Index for new-case digest selection
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_cases_created_at
		ON cases(created_at)
	`).Error; err != nil {
		return err
	}

	// Index for town-filtered case listings
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_cases_town
		ON cases(town)
	`).Error; err != nil {
		return err
	}

	// Index for loading a case's defendants in role order
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_parties_case_role
		ON parties(case_id, role)
	`).Error; err != nil {
		return err
	}

	return nil
}
