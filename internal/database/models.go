package database

import (
	"time"
)

// Case is one civil case keyed by its docket number. A Case is created
// exactly once per docket and never re-created.
type Case struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	DocketNo        string    `json:"docket_no" gorm:"size:64;uniqueIndex"`
	Town            string    `json:"town" gorm:"size:80"`
	CaseType        string    `json:"case_type" gorm:"size:120"`
	CourtLocation   string    `json:"court_location" gorm:"size:120"`
	PropertyAddress string    `json:"property_address" gorm:"size:255"`
	ListType        string    `json:"list_type" gorm:"size:120"`
	TrialListClaim  string    `json:"trial_list_claim" gorm:"size:120"`
	LastActionDate  string    `json:"last_action_date" gorm:"size:40"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	CreatedAt       time.Time `json:"created_at"`
	DefendantsJSON  *string   `json:"defendants_json" gorm:"type:text"`

	Parties []Party `json:"parties" gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE"`
}

// Party is one plaintiff or defendant row belonging to a Case. Roles follow
// the court-form codes P-01, D-01, ... ; (case, role, name) is unique.
type Party struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	CaseID         uint   `json:"case_id" gorm:"uniqueIndex:uq_party_case_role_name"`
	DocketNo       string `json:"docket_no" gorm:"size:64;index"`
	Role           string `json:"role" gorm:"size:16;uniqueIndex:uq_party_case_role_name"`
	Name           string `json:"name" gorm:"size:255;uniqueIndex:uq_party_case_role_name"`
	Attorney       string `json:"attorney" gorm:"size:255"`
	MailingAddress string `json:"mailing_address" gorm:"column:attorney_address;size:255"`
	FileDate       string `json:"file_date" gorm:"size:40"`
}

// Subscriber receives the new-case digest email.
type Subscriber struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Email       string     `json:"email" gorm:"size:255;uniqueIndex"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	ActiveUntil *time.Time `json:"active_until"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DigestSend records one digest delivery to one subscriber.
type DigestSend struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SubscriberID uint      `json:"subscriber_id"`
	SentAt       time.Time `json:"sent_at" gorm:"autoCreateTime"`
	CasesSent    int       `json:"cases_sent"`
}

func (Case) TableName() string {
	return "cases"
}

func (Party) TableName() string {
	return "parties"
}

func (Subscriber) TableName() string {
	return "subscribers"
}

func (DigestSend) TableName() string {
	return "digest_sends"
}
