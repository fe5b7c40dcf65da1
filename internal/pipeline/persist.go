package pipeline

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ctleads/harvester/internal/database"
	"github.com/ctleads/harvester/internal/geocode"
	"github.com/ctleads/harvester/internal/scraper"
	"github.com/ctleads/harvester/pkg/logger"
)

// Persister stores extracted case rows. A docket already on file is
// silently skipped, so replaying the same row sequence is idempotent.
type Persister struct {
	db       *gorm.DB
	resolver *geocode.Resolver
	logger   *logger.Logger
}

// NewPersister creates a persister; resolver may be nil to disable geocode
// enrichment.
func NewPersister(db *gorm.DB, resolver *geocode.Resolver, log *logger.Logger) *Persister {
	return &Persister{db: db, resolver: resolver, logger: log}
}

// SaveCases inserts each new row's Case plus its Party records in one
// transaction per row and returns the count of newly inserted cases.
func (p *Persister) SaveCases(rows []scraper.CaseRow) (int, error) {
	inserted := 0
	for _, row := range rows {
		if row.DocketNo == "" {
			continue
		}

		var count int64
		if err := p.db.Model(&database.Case{}).Where("docket_no = ?", row.DocketNo).Count(&count).Error; err != nil {
			return inserted, fmt.Errorf("failed to check docket %s: %w", row.DocketNo, err)
		}
		if count > 0 {
			p.logger.Debug("Docket already on file, skipping", "docket", row.DocketNo)
			continue
		}

		c := database.Case{
			DocketNo:        row.DocketNo,
			Town:            row.Town,
			CaseType:        row.Attrs.CaseType,
			CourtLocation:   row.Attrs.CourtLocation,
			PropertyAddress: row.Attrs.PropertyAddress,
			ListType:        row.Attrs.ListType,
			TrialListClaim:  row.Attrs.TrialListClaim,
			LastActionDate:  row.Attrs.LastActionDate,
		}

		if p.resolver != nil {
			if lat, lng, ok := p.resolver.Lookup(row.Attrs.PropertyAddress, row.Town); ok {
				c.Latitude = &lat
				c.Longitude = &lng
			}
		}

		err := p.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
			for _, party := range row.Parties {
				record := database.Party{
					CaseID:         c.ID,
					DocketNo:       row.DocketNo,
					Role:           party.Role,
					Name:           party.Name,
					Attorney:       party.Attorney,
					MailingAddress: party.MailingAddress,
					FileDate:       party.FileDate,
				}
				if err := tx.Create(&record).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return inserted, fmt.Errorf("failed to insert case %s: %w", row.DocketNo, err)
		}

		inserted++
	}
	return inserted, nil
}
