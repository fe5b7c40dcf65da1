package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ctleads/harvester/internal/database"
	"github.com/ctleads/harvester/internal/scraper"
	"github.com/ctleads/harvester/pkg/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger("error", "json")
	require.NoError(t, err)
	return log
}

func sampleRows() []scraper.CaseRow {
	return []scraper.CaseRow{
		{
			Town:     "Bridgeport",
			DocketNo: "FBTCV246001234S",
			Attrs: scraper.CaseAttrs{
				CaseType:        "Foreclosure",
				CourtLocation:   "Bridgeport",
				PropertyAddress: "12 Elm St, Bridgeport CT",
			},
			Parties: []scraper.PartyRow{
				{Role: "D-01", Name: "DOE JOHN", MailingAddress: "12 Elm St"},
				{Role: "P-01", Name: "ACME BANK NA", Attorney: "SMITH & JONES LLC"},
			},
		},
		{
			Town:     "Bridgeport",
			DocketNo: "FBTCV246005678S",
			Attrs:    scraper.CaseAttrs{CaseType: "Foreclosure"},
		},
	}
}

func TestSaveCasesInsertsCasesAndParties(t *testing.T) {
	db := setupTestDB(t)
	p := NewPersister(db, nil, testLogger(t))

	inserted, err := p.SaveCases(sampleRows())
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	var c database.Case
	require.NoError(t, db.Preload("Parties").Where("docket_no = ?", "FBTCV246001234S").First(&c).Error)
	require.Equal(t, "Bridgeport", c.Town)
	require.Equal(t, "Foreclosure", c.CaseType)
	require.Len(t, c.Parties, 2)
}

func TestSaveCasesIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	p := NewPersister(db, nil, testLogger(t))

	inserted, err := p.SaveCases(sampleRows())
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	inserted, err = p.SaveCases(sampleRows())
	require.NoError(t, err)
	require.Equal(t, 0, inserted)

	var cases, parties int64
	require.NoError(t, db.Model(&database.Case{}).Count(&cases).Error)
	require.NoError(t, db.Model(&database.Party{}).Count(&parties).Error)
	require.EqualValues(t, 2, cases)
	require.EqualValues(t, 2, parties)
}

func TestSaveCasesSkipsEmptyDocket(t *testing.T) {
	db := setupTestDB(t)
	p := NewPersister(db, nil, testLogger(t))

	inserted, err := p.SaveCases([]scraper.CaseRow{{Town: "Bridgeport"}})
	require.NoError(t, err)
	require.Equal(t, 0, inserted)

	var cases int64
	require.NoError(t, db.Model(&database.Case{}).Count(&cases).Error)
	require.EqualValues(t, 0, cases)
}
