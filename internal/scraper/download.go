package scraper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"gorm.io/gorm"

	"github.com/ctleads/harvester/internal/config"
	"github.com/ctleads/harvester/internal/database"
	"github.com/ctleads/harvester/pkg/logger"
)

// browserDownloadName is the fixed name the portal serves documents under.
const browserDownloadName = "DocumentInquiry.pdf"

// Downloader fetches each case's summons document through the browser and
// stores it as <docket>.pdf. A failed or timed-out download leaves no
// artifact behind, so the docket stays eligible on the next run.
type Downloader struct {
	cfg     *config.Config
	db      *gorm.DB
	session *Session
	logger  *logger.Logger
}

func NewDownloader(cfg *config.Config, db *gorm.DB, session *Session, log *logger.Logger) *Downloader {
	return &Downloader{cfg: cfg, db: db, session: session, logger: log}
}

// Run downloads documents for up to limit cases that have none on disk.
// limit <= 0 means unlimited.
func (d *Downloader) Run(limit int) error {
	stagingDir := filepath.Dir(d.cfg.DocumentDir)
	if err := os.MkdirAll(d.cfg.DocumentDir, 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	dockets, err := d.unprocessedDockets(limit)
	if err != nil {
		return err
	}
	if len(dockets) == 0 {
		d.logger.Info("No new cases to download documents for")
		return nil
	}
	d.logger.Info("Starting document downloads", "count", len(dockets))

	absStaging, err := filepath.Abs(stagingDir)
	if err != nil {
		return fmt.Errorf("failed to resolve staging directory: %w", err)
	}
	err = proto.BrowserSetDownloadBehavior{
		Behavior:     proto.BrowserSetDownloadBehaviorBehaviorAllow,
		DownloadPath: absStaging,
	}.Call(d.session.Browser)
	if err != nil {
		return fmt.Errorf("failed to set download directory: %w", err)
	}

	page := d.session.Page()
	processed, successes, failures := 0, 0, 0
	for i, docket := range dockets {
		url := DetailURL(d.cfg.PortalBaseURL, docket)
		d.logger.Info("Downloading document", "docket", docket, "index", i+1, "total", len(dockets))

		if err := page.Timeout(d.cfg.ScraperTimeout).Navigate(url); err != nil {
			d.logger.Error("Navigation failed", "docket", docket, "error", err)
			failures++
			continue
		}

		link, err := page.Timeout(d.cfg.ScraperTimeout).Element(documentLinkID)
		if err != nil {
			d.logger.Warn("Document link never appeared", "docket", docket, "error", err)
			failures++
			continue
		}

		staged := filepath.Join(absStaging, browserDownloadName)
		os.Remove(staged)

		if err := link.Click("left", 1); err != nil {
			d.logger.Warn("Document link click failed", "docket", docket, "error", err)
			failures++
			continue
		}

		if !d.waitForDownload(staged) {
			d.logger.Warn("Document download timed out", "docket", docket)
			failures++
			continue
		}

		dest := filepath.Join(d.cfg.DocumentDir, fmt.Sprintf("%s.pdf", docket))
		if err := os.Rename(staged, dest); err != nil {
			os.Remove(staged)
			d.logger.Error("Failed to move downloaded document", "docket", docket, "error", err)
			failures++
			continue
		}

		d.logger.Info("Document saved", "docket", docket, "path", dest)
		successes++
		processed++
		pause(300*time.Millisecond, 800*time.Millisecond)
	}

	d.logger.Info("Document downloads finished",
		"processed", processed,
		"successes", successes,
		"failures", failures,
	)
	return nil
}

// unprocessedDockets lists case dockets with no document on disk, in case
// insertion order.
func (d *Downloader) unprocessedDockets(limit int) ([]string, error) {
	onDisk := make(map[string]bool)
	entries, err := os.ReadDir(d.cfg.DocumentDir)
	if err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasSuffix(name, ".pdf") {
				onDisk[strings.TrimSuffix(name, ".pdf")] = true
			}
		}
	}
	d.logger.Info("Documents already on disk", "count", len(onDisk))

	var cases []database.Case
	if err := d.db.Order("id").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	var dockets []string
	for _, c := range cases {
		if onDisk[c.DocketNo] {
			continue
		}
		dockets = append(dockets, c.DocketNo)
		if limit > 0 && len(dockets) >= limit {
			break
		}
	}
	return dockets, nil
}

// waitForDownload waits until the staged file exists and its size has been
// stable for the configured window.
func (d *Downloader) waitForDownload(path string) bool {
	deadline := time.Now().Add(d.cfg.DownloadTimeout)
	var lastSize int64 = -1
	var stableSince time.Time

	for time.Now().Before(deadline) {
		info, err := os.Stat(path)
		if err != nil {
			time.Sleep(250 * time.Millisecond)
			continue
		}
		size := info.Size()
		if size == lastSize {
			if stableSince.IsZero() {
				stableSince = time.Now()
			}
			if time.Since(stableSince) >= d.cfg.DownloadStableFor {
				return true
			}
		} else {
			stableSince = time.Time{}
			lastSize = size
		}
		time.Sleep(250 * time.Millisecond)
	}
	return false
}
