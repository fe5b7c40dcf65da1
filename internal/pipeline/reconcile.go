package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/ctleads/harvester/internal/database"
	"github.com/ctleads/harvester/pkg/logger"
)

// ExtractedDefendant is one (name, address) pair recovered from a summons
// document page.
type ExtractedDefendant struct {
	Name    string
	Address string
}

// Outcome reports what happened to one extracted pair during a merge.
type Outcome struct {
	Name             string
	Address          string
	Status           string
	MatchedPartyName string
	PreviousAddress  string
	StoredAddress    string
}

// Merge statuses.
const (
	StatusUpdated      = "updated"
	StatusUnchanged    = "unchanged"
	StatusCreated      = "created"
	StatusCaseNotFound = "case_not_found"
)

// Reconciler merges extracted defendant rows into the existing Party
// records of a case, by position in role order. All writes for one docket
// happen in a single transaction.
type Reconciler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewReconciler(db *gorm.DB, log *logger.Logger) *Reconciler {
	return &Reconciler{db: db, logger: log}
}

// Apply merges the extracted pairs for one docket. Extracted values replace
// stored ones only where non-empty and different; surplus pairs create new
// defendant role slots. The case's defendant snapshot is overwritten with
// the non-empty extracted pairs. A persistence failure rolls back the whole
// docket and is returned to the caller.
func (r *Reconciler) Apply(docket string, defendants []ExtractedDefendant) ([]Outcome, error) {
	if len(defendants) == 0 {
		return nil, nil
	}

	var outcomes []Outcome
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var c database.Case
		if err := tx.Where("docket_no = ?", docket).First(&c).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				r.logger.Warn("No case on file for docket", "docket", docket)
				for _, d := range defendants {
					outcomes = append(outcomes, Outcome{
						Name:    d.Name,
						Address: d.Address,
						Status:  StatusCaseNotFound,
					})
				}
				return nil
			}
			return err
		}

		var parties []database.Party
		if err := tx.Where("case_id = ?", c.ID).Order("role, id").Find(&parties).Error; err != nil {
			return err
		}

		var existing []database.Party
		roleSet := make(map[string]bool)
		for _, p := range parties {
			if strings.HasPrefix(strings.ToUpper(p.Role), "D-") {
				existing = append(existing, p)
			}
			if p.Role != "" {
				roleSet[strings.ToUpper(p.Role)] = true
			}
		}
		sort.SliceStable(existing, func(i, j int) bool {
			if existing[i].Role != existing[j].Role {
				return existing[i].Role < existing[j].Role
			}
			return existing[i].ID < existing[j].ID
		})

		var snapshot []map[string]string
		for idx, d := range defendants {
			name := strings.TrimSpace(d.Name)
			address := strings.TrimSpace(d.Address)
			if name != "" || address != "" {
				snapshot = append(snapshot, map[string]string{
					"name":            name,
					"mailing_address": address,
				})
			}

			if idx < len(existing) {
				party := existing[idx]
				prevAddress := party.MailingAddress
				changed := false
				if name != "" && name != party.Name {
					party.Name = name
					changed = true
				}
				if address != "" && address != party.MailingAddress {
					party.MailingAddress = address
					changed = true
				}
				status := StatusUnchanged
				if changed {
					status = StatusUpdated
					if err := tx.Save(&party).Error; err != nil {
						return err
					}
				}
				outcomes = append(outcomes, Outcome{
					Name:             firstNonEmpty(name, party.Name),
					Address:          firstNonEmpty(address, prevAddress),
					Status:           status,
					MatchedPartyName: party.Name,
					PreviousAddress:  prevAddress,
					StoredAddress:    party.MailingAddress,
				})
				continue
			}

			role := nextDefendantRole(roleSet)
			party := database.Party{
				CaseID:         c.ID,
				DocketNo:       docket,
				Role:           role,
				Name:           name,
				MailingAddress: address,
			}
			if err := tx.Create(&party).Error; err != nil {
				return err
			}
			outcomes = append(outcomes, Outcome{
				Name:             name,
				Address:          address,
				Status:           StatusCreated,
				MatchedPartyName: party.Name,
				StoredAddress:    party.MailingAddress,
			})
		}

		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to encode defendant snapshot: %w", err)
		}
		encoded := string(data)
		return tx.Model(&c).Update("defendants_json", &encoded).Error
	})
	if err != nil {
		return nil, fmt.Errorf("reconciliation failed for %s: %w", docket, err)
	}
	return outcomes, nil
}

// nextDefendantRole returns the lowest D-nn code not already in use,
// marking it used.
func nextDefendantRole(inUse map[string]bool) string {
	for n := 1; ; n++ {
		role := fmt.Sprintf("D-%02d", n)
		if !inUse[role] {
			inUse[role] = true
			return role
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
