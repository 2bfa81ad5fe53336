// Package model defines the core domain models used throughout the application.
package model

import "time"

// CaseStatus is the review state of a fraud case.
type CaseStatus string

// Case status constants.
const (
	StatusPendingReview      CaseStatus = "pending_review"
	StatusConfirmedFraud     CaseStatus = "confirmed_fraud"
	StatusNotFraud           CaseStatus = "not_fraud"
	StatusVerificationFailed CaseStatus = "verification_failed"
)

// KnownStatuses lists every status the fraud desk records itself.
var KnownStatuses = []CaseStatus{
	StatusPendingReview,
	StatusConfirmedFraud,
	StatusNotFraud,
	StatusVerificationFailed,
}

// IsKnown reports whether s is one of KnownStatuses.
func (s CaseStatus) IsKnown() bool {
	for _, known := range KnownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsPending reports whether no outcome has been recorded yet.
func (s CaseStatus) IsPending() bool {
	return s == StatusPendingReview
}

// FraudCase is a single flagged transaction awaiting, or resolved by, a customer check.
type FraudCase struct {
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	OutcomeNote         *string    `json:"outcomeNote"`
	UserName            string     `json:"userName"`
	SecurityIdentifier  string     `json:"securityIdentifier"`
	CardEnding          string     `json:"cardEnding"`
	Status              CaseStatus `json:"status"`
	TransactionName     string     `json:"transactionName"`
	TransactionTime     string     `json:"transactionTime"`
	TransactionCategory string     `json:"transactionCategory"`
	TransactionSource   string     `json:"transactionSource"`
	TransactionLocation string     `json:"transactionLocation"`
	SecurityQuestion    string     `json:"securityQuestion"`
	SecurityAnswer      string     `json:"-"` // never serialized
	TransactionAmount   float64    `json:"transactionAmount"`
	ID                  int64      `json:"id"`
}

// Note returns the outcome note, or "" when none was recorded.
func (c *FraudCase) Note() string {
	if c.OutcomeNote == nil {
		return ""
	}
	return *c.OutcomeNote
}

// CaseFilter narrows a case listing. Zero values mean "no constraint".
type CaseFilter struct {
	Status   CaseStatus
	UserName string
	Category string
	Limit    int
}
