// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/fraud-desk/internal/model"
)

// CaseStore defines the contract for fraud case persistence.
type CaseStore interface {
	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error

	// Case operations
	FindPendingCaseByUsername(ctx context.Context, username string) (*model.FraudCase, error)
	UpdateCaseStatus(ctx context.Context, caseID int64, status model.CaseStatus, outcomeNote string) (bool, error)
	ListAllCases(ctx context.Context) ([]model.FraudCase, error)

	// Diagnostics
	GetCase(ctx context.Context, id int64) (*model.FraudCase, error)
	ListCases(ctx context.Context, filter model.CaseFilter) ([]model.FraudCase, error)
	CountCases(ctx context.Context) (int, error)
	VerifySecurityAnswer(ctx context.Context, caseID int64, answer string) (bool, error)
}
