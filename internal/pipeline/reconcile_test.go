package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ctleads/harvester/internal/database"
)

func seedCase(t *testing.T, db *gorm.DB, docket string, parties []database.Party) database.Case {
	t.Helper()
	c := database.Case{DocketNo: docket, Town: "Bridgeport"}
	require.NoError(t, db.Create(&c).Error)
	for i := range parties {
		parties[i].CaseID = c.ID
		parties[i].DocketNo = docket
		require.NoError(t, db.Create(&parties[i]).Error)
	}
	return c
}

func TestApplyUpdatesAndCreates(t *testing.T) {
	db := setupTestDB(t)
	seedCase(t, db, "FBTCV246001234S", []database.Party{
		{Role: "P-01", Name: "ACME BANK NA"},
		{Role: "D-01", Name: "DOE JOHN"},
		{Role: "D-02", Name: "DOE JANE", MailingAddress: "12 Elm St"},
	})

	r := NewReconciler(db, testLogger(t))
	outcomes, err := r.Apply("FBTCV246001234S", []ExtractedDefendant{
		{Name: "DOE JOHN", Address: "45 Maple Ave, New Haven CT"},
		{Name: "DOE JANE", Address: "12 Elm St"},
		{Name: "OCCUPANT UNKNOWN", Address: "12 Elm St Apt 2"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	require.Equal(t, StatusUpdated, outcomes[0].Status)
	require.Equal(t, "", outcomes[0].PreviousAddress)
	require.Equal(t, "45 Maple Ave, New Haven CT", outcomes[0].StoredAddress)

	require.Equal(t, StatusUnchanged, outcomes[1].Status)
	require.Equal(t, "12 Elm St", outcomes[1].StoredAddress)

	require.Equal(t, StatusCreated, outcomes[2].Status)

	var created database.Party
	require.NoError(t, db.Where("docket_no = ? AND name = ?", "FBTCV246001234S", "OCCUPANT UNKNOWN").First(&created).Error)
	require.Equal(t, "D-03", created.Role)
	require.Equal(t, "12 Elm St Apt 2", created.MailingAddress)
}

func TestApplyWritesDefendantSnapshot(t *testing.T) {
	db := setupTestDB(t)
	seedCase(t, db, "FBTCV246001234S", []database.Party{
		{Role: "D-01", Name: "DOE JOHN"},
	})

	r := NewReconciler(db, testLogger(t))
	_, err := r.Apply("FBTCV246001234S", []ExtractedDefendant{
		{Name: "DOE JOHN", Address: "45 Maple Ave"},
	})
	require.NoError(t, err)

	var c database.Case
	require.NoError(t, db.Where("docket_no = ?", "FBTCV246001234S").First(&c).Error)
	require.NotNil(t, c.DefendantsJSON)

	var snapshot []map[string]string
	require.NoError(t, json.Unmarshal([]byte(*c.DefendantsJSON), &snapshot))
	require.Len(t, snapshot, 1)
	require.Equal(t, "DOE JOHN", snapshot[0]["name"])
	require.Equal(t, "45 Maple Ave", snapshot[0]["mailing_address"])
}

func TestApplyCaseNotFound(t *testing.T) {
	db := setupTestDB(t)

	r := NewReconciler(db, testLogger(t))
	outcomes, err := r.Apply("NNHCV229876543S", []ExtractedDefendant{
		{Name: "DOE JOHN", Address: "45 Maple Ave"},
		{Name: "DOE JANE"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		require.Equal(t, StatusCaseNotFound, o.Status)
	}

	var parties int64
	require.NoError(t, db.Model(&database.Party{}).Count(&parties).Error)
	require.EqualValues(t, 0, parties)
}

func TestApplyNothingExtracted(t *testing.T) {
	db := setupTestDB(t)
	seedCase(t, db, "FBTCV246001234S", nil)

	r := NewReconciler(db, testLogger(t))
	outcomes, err := r.Apply("FBTCV246001234S", nil)
	require.NoError(t, err)
	require.Nil(t, outcomes)

	var c database.Case
	require.NoError(t, db.Where("docket_no = ?", "FBTCV246001234S").First(&c).Error)
	require.Nil(t, c.DefendantsJSON)
}

func TestNextDefendantRoleSkipsInUse(t *testing.T) {
	inUse := map[string]bool{"D-01": true, "D-03": true}
	require.Equal(t, "D-02", nextDefendantRole(inUse))
	require.Equal(t, "D-04", nextDefendantRole(inUse))
	require.Equal(t, "D-05", nextDefendantRole(inUse))
}
