package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDocket(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "plain href",
			link: "CaseDetail/PublicCaseDetail.aspx?DocketNo=FBTCV246001234S",
			want: "FBTCV246001234S",
		},
		{
			name: "full outer html",
			link: `<a id="ctl00_ContentPlaceHolder1_gvPropertyResults_ctl02_hlnkDocketNo" href="../CaseDetail/PublicCaseDetail.aspx?DocketNo=NNHCV229876543S">NNH-CV-22-9876543-S</a>`,
			want: "NNHCV229876543S",
		},
		{
			name: "no docket parameter",
			link: "CaseDetail/PublicCaseDetail.aspx?Foo=Bar",
			want: "",
		},
		{
			name: "empty",
			link: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDocket(tt.link))
		})
	}
}

func TestDocketFromURL(t *testing.T) {
	got := docketFromURL("https://civilinquiry.jud.ct.gov/CaseDetail/PublicCaseDetail.aspx?DocketNo=FBTCV246001234S")
	assert.Equal(t, "FBTCV246001234S", got)

	assert.Equal(t, "", docketFromURL("https://civilinquiry.jud.ct.gov/CaseDetail/PublicCaseDetail.aspx"))
}

func TestDetailURL(t *testing.T) {
	got := DetailURL("https://civilinquiry.jud.ct.gov", "FBTCV246001234S")
	assert.Equal(t, "https://civilinquiry.jud.ct.gov/CaseDetail/PublicCaseDetail.aspx?DocketNo=FBTCV246001234S", got)
}

func TestParseCaseAttrs(t *testing.T) {
	rows := [][]string{
		{"Case Type:", "Foreclosure"},
		{"Court Location:", "Bridgeport"},
		{"Property Address:", "12 Elm St, Bridgeport CT"},
		{"List Type", "Foreclosure List"},
		{"Trial List Claim:", ""},
		{"Last Action Date:", "06/14/2024"},
		{"Some Other Label:", "ignored"},
		{"lonely cell"},
	}

	attrs := parseCaseAttrs(rows)
	assert.Equal(t, "Foreclosure", attrs.CaseType)
	assert.Equal(t, "Bridgeport", attrs.CourtLocation)
	assert.Equal(t, "12 Elm St, Bridgeport CT", attrs.PropertyAddress)
	assert.Equal(t, "Foreclosure List", attrs.ListType)
	assert.Equal(t, "", attrs.TrialListClaim)
	assert.Equal(t, "06/14/2024", attrs.LastActionDate)
}

func TestScanParties(t *testing.T) {
	rows := [][]string{
		{"Party", "Name", "File Date"},
		{"P-01", "ACME BANK NA", "01/02/2024"},
		{"Attorney:", "SMITH & JONES LLC", ""},
		{"D-01", "DOE JOHN", ""},
		{"Address:", "45 MAPLE AVE", "NEW HAVEN CT 06511"},
		{"Filed:", "01/05/2024", ""},
		{"D-02", "DOE JANE", ""},
		{"Appearance Attorney:", "", "SELF-REP"},
	}

	parties := scanParties(rows)
	if assert.Len(t, parties, 3) {
		assert.Equal(t, PartyRow{Role: "P-01", Name: "ACME BANK NA", Attorney: "SMITH & JONES LLC", FileDate: "01/02/2024"}, parties[0])
		assert.Equal(t, PartyRow{Role: "D-01", Name: "DOE JOHN", MailingAddress: "45 MAPLE AVE NEW HAVEN CT 06511", FileDate: "01/05/2024"}, parties[1])
		assert.Equal(t, PartyRow{Role: "D-02", Name: "DOE JANE", Attorney: "SELF-REP"}, parties[2])
	}
}

func TestScanPartiesShiftedNameCell(t *testing.T) {
	// Some detail pages render the role row with an empty second cell and
	// the name pushed into the third.
	rows := [][]string{
		{"D-01", "", "OCCUPANT UNKNOWN"},
		{"Address:", "12 ELM ST", ""},
	}

	parties := scanParties(rows)
	if assert.Len(t, parties, 1) {
		assert.Equal(t, "D-01", parties[0].Role)
		assert.Equal(t, "OCCUPANT UNKNOWN", parties[0].Name)
		assert.Equal(t, "12 ELM ST", parties[0].MailingAddress)
	}
}

func TestScanPartiesIgnoresPreambleRows(t *testing.T) {
	rows := [][]string{
		{"Attorney:", "SHOULD NOT ATTACH", ""},
		{"Address:", "NO PARTY YET", ""},
		{"P-01", "ACME BANK NA", ""},
	}

	parties := scanParties(rows)
	if assert.Len(t, parties, 1) {
		assert.Equal(t, "ACME BANK NA", parties[0].Name)
		assert.Equal(t, "", parties[0].Attorney)
		assert.Equal(t, "", parties[0].MailingAddress)
	}
}

func TestOrderAndCap(t *testing.T) {
	var parties []PartyRow
	for i := 1; i <= 12; i++ {
		parties = append(parties, PartyRow{Role: roleFor("D", i)})
	}
	for i := 1; i <= 3; i++ {
		parties = append(parties, PartyRow{Role: roleFor("P", i)})
	}
	// Interleave one plaintiff early to check defendant-first reordering.
	parties[3], parties[12] = parties[12], parties[3]

	ordered := orderAndCap(parties, 10)
	assert.Len(t, ordered, 10)
	for _, p := range ordered {
		assert.Equal(t, byte('D'), p.Role[0], "cap should keep defendants ahead of plaintiffs")
	}
}

func TestOrderAndCapKeepsAllWhenUnderLimit(t *testing.T) {
	parties := []PartyRow{
		{Role: "P-01", Name: "BANK"},
		{Role: "D-01", Name: "OWNER"},
		{Role: "D-02", Name: "TENANT"},
	}

	ordered := orderAndCap(parties, 10)
	if assert.Len(t, ordered, 3) {
		assert.Equal(t, "D-01", ordered[0].Role)
		assert.Equal(t, "D-02", ordered[1].Role)
		assert.Equal(t, "P-01", ordered[2].Role)
	}
}

func roleFor(side string, n int) string {
	if n < 10 {
		return side + "-0" + string(rune('0'+n))
	}
	return side + "-1" + string(rune('0'+n-10))
}
