package scraper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ctleads/harvester/internal/config"
	"github.com/ctleads/harvester/internal/database"
	"github.com/ctleads/harvester/pkg/logger"
)

func newTestDownloader(t *testing.T, cfg *config.Config) (*Downloader, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log, err := logger.NewLogger("error", "json")
	require.NoError(t, err)
	return NewDownloader(cfg, db, nil, log), db
}

func TestUnprocessedDocketsSkipsFilesOnDisk(t *testing.T) {
	dir := t.TempDir()
	d, db := newTestDownloader(t, &config.Config{DocumentDir: dir})

	for _, docket := range []string{"AAA111", "BBB222", "CCC333"} {
		require.NoError(t, db.Create(&database.Case{DocketNo: docket}).Error)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BBB222.pdf"), []byte("%PDF"), 0644))

	dockets, err := d.unprocessedDockets(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA111", "CCC333"}, dockets)
}

func TestUnprocessedDocketsHonorsLimit(t *testing.T) {
	d, db := newTestDownloader(t, &config.Config{DocumentDir: t.TempDir()})

	for _, docket := range []string{"AAA111", "BBB222", "CCC333"} {
		require.NoError(t, db.Create(&database.Case{DocketNo: docket}).Error)
	}

	dockets, err := d.unprocessedDockets(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA111", "BBB222"}, dockets)
}

func TestWaitForDownloadStableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DocumentInquiry.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 content"), 0644))

	d, _ := newTestDownloader(t, &config.Config{
		DocumentDir:       dir,
		DownloadTimeout:   5 * time.Second,
		DownloadStableFor: 300 * time.Millisecond,
	})
	assert.True(t, d.waitForDownload(path))
}

func TestWaitForDownloadTimesOutWhenMissing(t *testing.T) {
	dir := t.TempDir()
	d, _ := newTestDownloader(t, &config.Config{
		DocumentDir:       dir,
		DownloadTimeout:   600 * time.Millisecond,
		DownloadStableFor: 200 * time.Millisecond,
	})
	assert.False(t, d.waitForDownload(filepath.Join(dir, "DocumentInquiry.pdf")))
}
