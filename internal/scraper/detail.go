package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/go-rod/rod"
)

var (
	// roleRe matches the court-form party role codes (P-01, D-02, ...).
	roleRe = regexp.MustCompile(`(?i)^[PD]-\d{1,2}$`)
	// docketLinkRe recovers the docket number from a detail-link href.
	docketLinkRe = regexp.MustCompile(`DocketNo=([A-Z0-9]+)`)
)

// CaseAttrs are the labeled attributes of the detail page's basic-info table.
type CaseAttrs struct {
	CaseType        string
	CourtLocation   string
	PropertyAddress string
	ListType        string
	TrialListClaim  string
	LastActionDate  string
}

// PartyRow is one party extracted from the detail page's parties table.
type PartyRow struct {
	Role           string
	Name           string
	Attorney       string
	MailingAddress string
	FileDate       string
}

// CaseRow is everything extracted from one visited detail page.
type CaseRow struct {
	Town     string
	DocketNo string
	Attrs    CaseAttrs
	Parties  []PartyRow
}

const (
	caseInfoPanelID = "#ctl00_ContentPlaceHolder1_CaseDetailBasicInfo1_pnlCVInfo"
	partiesPanelID  = "#ctl00_ContentPlaceHolder1_CaseDetailParties1_pnlParties"
	documentLinkID  = "#ctl00_ContentPlaceHolder1_CaseDetailDocuments1_gvDocuments_ctl02_hlnkDocument"
)

// Extractor parses rendered detail pages into case rows.
type Extractor struct {
	maxParties int
}

func NewExtractor(maxParties int) *Extractor {
	return &Extractor{maxParties: maxParties}
}

// ExtractCaseRow reads a detail page tab into a CaseRow. The docket number
// comes from the visited link's markup, falling back to the tab's own URL;
// a row with no recoverable docket has DocketNo == "" and is dropped by the
// caller.
func (e *Extractor) ExtractCaseRow(tab *rod.Page, town, href string) CaseRow {
	row := CaseRow{Town: town}

	row.DocketNo = ExtractDocket(href)
	if row.DocketNo == "" {
		if info, err := tab.Info(); err == nil {
			row.DocketNo = docketFromURL(info.URL)
		}
	}

	if panel, err := tab.Element(caseInfoPanelID); err == nil {
		row.Attrs = parseCaseAttrs(collectCells(panel))
	}

	if panel, err := tab.Element(partiesPanelID); err == nil {
		target := panel
		// The parties grid is an inner table nested inside the panel's
		// layout table.
		if inner, err := panel.Element("table table"); err == nil {
			target = inner
		}
		parties := scanParties(collectCells(target))
		row.Parties = orderAndCap(parties, e.maxParties)
	}

	return row
}

// collectCells flattens an element's table rows into trimmed cell text.
func collectCells(root *rod.Element) [][]string {
	var rows [][]string
	trs, err := root.Elements("tr")
	if err != nil {
		return rows
	}
	for _, tr := range trs {
		tds, err := tr.Elements("td")
		if err != nil || len(tds) == 0 {
			continue
		}
		cells := make([]string, 0, len(tds))
		for _, td := range tds {
			text, err := td.Text()
			if err != nil {
				text = ""
			}
			cells = append(cells, strings.TrimSpace(text))
		}
		rows = append(rows, cells)
	}
	return rows
}

// parseCaseAttrs fills the attribute struct by exact label match over a
// two-column table. Unmatched labels are ignored.
func parseCaseAttrs(rows [][]string) CaseAttrs {
	var attrs CaseAttrs
	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		label := strings.TrimSuffix(strings.TrimSpace(cells[0]), ":")
		value := strings.TrimSpace(cells[1])
		switch label {
		case "Case Type":
			attrs.CaseType = value
		case "Court Location":
			attrs.CourtLocation = value
		case "Property Address":
			attrs.PropertyAddress = value
		case "List Type":
			attrs.ListType = value
		case "Trial List Claim":
			attrs.TrialListClaim = value
		case "Last Action Date":
			attrs.LastActionDate = value
		}
	}
	return attrs
}

// scanState names the party-table scanner states so the empty-name role row
// is an enumerated transition rather than a silent fallthrough.
type scanState int

const (
	awaitingRoleMarker scanState = iota
	accumulatingFields
)

// scanParties walks the parties-table rows with a line-scanning state
// machine. A role-marker row (first cell matching P-nn/D-nn) starts a new
// party; following rows fill attorney, address and filing-date fields by
// case-insensitive label prefix until the next marker or the end of the
// table.
func scanParties(rows [][]string) []PartyRow {
	var (
		parties []PartyRow
		current PartyRow
		state   = awaitingRoleMarker
	)

	cell := func(cells []string, i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}

	startParty := func(cells []string) {
		first := cell(cells, 0)
		second := cell(cells, 1)
		third := cell(cells, 2)
		if second != "" {
			current = PartyRow{Role: first, Name: second, FileDate: third}
			return
		}
		// Role row with an empty name cell: the name shows up shifted into
		// the third cell.
		current = PartyRow{Role: first, Name: third}
	}

	for _, cells := range rows {
		if len(cells) == 0 {
			continue
		}
		first := cell(cells, 0)
		second := cell(cells, 1)
		third := cell(cells, 2)

		switch state {
		case awaitingRoleMarker:
			if roleRe.MatchString(first) {
				startParty(cells)
				state = accumulatingFields
			}

		case accumulatingFields:
			if roleRe.MatchString(first) {
				parties = append(parties, current)
				startParty(cells)
				continue
			}
			label := strings.ToLower(first)
			value := second
			if value == "" {
				value = third
			}
			switch {
			case strings.HasPrefix(label, "appearance attorney"):
				current.Attorney = value
			case strings.HasPrefix(label, "attorney"):
				current.Attorney = value
			case strings.HasPrefix(label, "address"):
				current.MailingAddress = joinNonEmpty(second, third)
			case strings.HasPrefix(label, "filed"):
				current.FileDate = value
			}
		}
	}

	if state == accumulatingFields {
		parties = append(parties, current)
	}
	return parties
}

// orderAndCap reorders parties defendants-first, preserving relative order
// within each side, and truncates to max entries.
func orderAndCap(parties []PartyRow, max int) []PartyRow {
	var defendants, plaintiffs []PartyRow
	for _, p := range parties {
		if strings.HasPrefix(strings.ToUpper(p.Role), "D-") {
			defendants = append(defendants, p)
		} else {
			plaintiffs = append(plaintiffs, p)
		}
	}
	ordered := append(defendants, plaintiffs...)
	if max > 0 && len(ordered) > max {
		ordered = ordered[:max]
	}
	return ordered
}

// ExtractDocket recovers the docket number from detail-link markup.
func ExtractDocket(link string) string {
	if match := docketLinkRe.FindStringSubmatch(link); match != nil {
		return match[1]
	}
	return ""
}

// docketFromURL falls back to the DocketNo query parameter of the page URL.
func docketFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("DocketNo")
}

// DetailURL builds the public detail-page URL for a docket.
func DetailURL(base, docket string) string {
	return base + "/CaseDetail/PublicCaseDetail.aspx?DocketNo=" + docket
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
