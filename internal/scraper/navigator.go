package scraper

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"github.com/ctleads/harvester/internal/config"
	"github.com/ctleads/harvester/pkg/logger"
)

const (
	townInputID   = "#ctl00_ContentPlaceHolder1_txtCityTown"
	submitBtnID   = "#ctl00_ContentPlaceHolder1_btnSubmit"
	resultsGrid   = "#ctl00_ContentPlaceHolder1_gvPropertyResults"
	docketLinkCSS = "a[id*='hlnkDocketNo']"
)

// Navigator drives the property-address search form and its result pager to
// exhaustion for one town at a time. Pagination and row extraction are
// strictly sequential; restarts re-walk from page one and rely on the
// persister's docket skip for idempotence.
type Navigator struct {
	cfg       *config.Config
	session   *Session
	extractor *Extractor
	logger    *logger.Logger
}

func NewNavigator(cfg *config.Config, session *Session, log *logger.Logger) *Navigator {
	return &Navigator{
		cfg:       cfg,
		session:   session,
		extractor: NewExtractor(cfg.MaxPartiesPerCase),
		logger:    log,
	}
}

// ScrapeTown submits the town into the search form and yields one CaseRow
// per result row across every result page. Rows with no recoverable docket
// are dropped. A visit error abandons that row only.
func (n *Navigator) ScrapeTown(town string, visit func(CaseRow) error) error {
	page := n.session.Page()

	searchURL := n.cfg.PortalBaseURL + "/PropertyAddressSearch.aspx"
	if err := page.Timeout(n.cfg.ScraperTimeout).Navigate(searchURL); err != nil {
		return fmt.Errorf("failed to navigate to search form: %w", err)
	}

	input, err := page.Timeout(n.cfg.ScraperTimeout).Element(townInputID)
	if err != nil {
		return fmt.Errorf("town input never appeared: %w", err)
	}
	if err := input.SelectAllText(); err == nil {
		input.Input("")
	}
	if err := input.Input(town); err != nil {
		return fmt.Errorf("failed to enter town: %w", err)
	}
	pause(200*time.Millisecond, 600*time.Millisecond)

	submit, err := page.Timeout(n.cfg.ScraperTimeout).Element(submitBtnID)
	if err != nil {
		return fmt.Errorf("submit button never appeared: %w", err)
	}
	if err := submit.Click("left", 1); err != nil {
		return fmt.Errorf("failed to submit search: %w", err)
	}
	pause(200*time.Millisecond, 600*time.Millisecond)

	pageNum := 1
	for {
		if !n.waitForGrid(page, town, pageNum) {
			// Either the last page was left behind or the grid failed to
			// render twice in a row; both end this town.
			n.logger.Info("Pagination ended", "town", town, "pages", pageNum-1)
			return nil
		}

		links, err := page.Elements(docketLinkCSS)
		if err != nil {
			links = nil
		}
		hrefs := make([]string, 0, len(links))
		for _, link := range links {
			if href, err := link.Attribute("href"); err == nil && href != nil {
				hrefs = append(hrefs, *href)
			}
		}
		n.logger.Debug("Result page collected", "town", town, "page", pageNum, "rows", len(hrefs))

		for _, href := range hrefs {
			row, err := n.visitRow(town, href)
			if err != nil {
				n.logger.Warn("Row visit failed", "town", town, "href", href, "error", err)
				continue
			}
			if row.DocketNo == "" {
				n.logger.Warn("Dropping row with no recoverable docket", "town", town, "href", href)
				continue
			}
			if err := visit(row); err != nil {
				return err
			}
		}

		next, err := page.Timeout(2 * time.Second).ElementR("a", "Next")
		if err != nil {
			n.logger.Info("No next page", "town", town, "pages", pageNum)
			return nil
		}

		var marker *rod.Element
		if len(links) > 0 {
			marker = links[0]
		}
		if err := next.Click("left", 1); err != nil {
			n.logger.Warn("Next click failed, ending pagination", "town", town, "error", err)
			return nil
		}
		n.waitForStaleness(marker)
		pageNum++
	}
}

// visitRow opens the detail link in a background tab and extracts one row.
// Grid hrefs are relative, so the tab is pointed at the rebuilt absolute
// detail URL when the docket is recoverable.
func (n *Navigator) visitRow(town, href string) (CaseRow, error) {
	target := href
	if docket := ExtractDocket(href); docket != "" {
		target = DetailURL(n.cfg.PortalBaseURL, docket)
	}

	var row CaseRow
	err := n.session.withTab(target, func(tab *rod.Page) error {
		pause(200*time.Millisecond, 600*time.Millisecond)
		row = n.extractor.ExtractCaseRow(tab, town, href)
		pause(200*time.Millisecond, 600*time.Millisecond)
		return nil
	})
	return row, err
}

// waitForGrid waits for the results grid, retrying once after a settle
// delay so a transient render failure is distinguishable (in logs) from the
// end of the result set.
func (n *Navigator) waitForGrid(page *rod.Page, town string, pageNum int) bool {
	for attempt := 0; attempt < 2; attempt++ {
		_, err := page.Timeout(n.cfg.ScraperTimeout).Element(resultsGrid)
		if err == nil {
			return true
		}
		if attempt == 0 {
			n.logger.Warn("Results grid missing, retrying once", "town", town, "page", pageNum)
			pause(600*time.Millisecond, time.Second)
		}
	}
	return false
}

// waitForStaleness polls until the marker element from the previous page is
// detached, falling back to a fixed settle delay.
func (n *Navigator) waitForStaleness(marker *rod.Element) {
	if marker == nil {
		pause(600*time.Millisecond, time.Second)
		return
	}
	deadline := time.Now().Add(n.cfg.ScraperTimeout)
	for time.Now().Before(deadline) {
		if _, err := marker.Describe(1, false); err != nil {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	pause(600*time.Millisecond, time.Second)
}
