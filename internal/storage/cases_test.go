package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Veraticus/fraud-desk/internal/common"
	"github.com/Veraticus/fraud-desk/internal/model"
)

func TestSQLiteStorage_FindPendingCaseByUsername(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		wantCard string
	}{
		{"exact", "John Smith", "4242"},
		{"upper case", "JOHN SMITH", "4242"},
		{"lower case", "john smith", "4242"},
		{"mixed case", "sArAh WiLLiams", "8765"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := store.FindPendingCaseByUsername(ctx, tt.username)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c == nil {
				t.Fatalf("Expected a case for %q", tt.username)
			}
			if c.CardEnding != tt.wantCard {
				t.Errorf("CardEnding = %q, want %q", c.CardEnding, tt.wantCard)
			}
			if c.Status != model.StatusPendingReview {
				t.Errorf("Status = %q, want pending_review", c.Status)
			}
			if c.OutcomeNote != nil {
				t.Errorf("Seed case should have no outcome note, got %q", *c.OutcomeNote)
			}
		})
	}
}

func TestSQLiteStorage_FindPendingCaseByUsername_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	c, err := store.FindPendingCaseByUsername(context.Background(), "nonexistent-user")
	if err != nil {
		t.Fatalf("Absent case must not be an error, got %v", err)
	}
	if c != nil {
		t.Errorf("Expected nil case, got %+v", c)
	}
}

func TestSQLiteStorage_FindPendingCaseByUsername_EmptyUsername(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	for _, username := range []string{"", "   ", "\t"} {
		c, err := store.FindPendingCaseByUsername(context.Background(), username)
		if err != nil {
			t.Errorf("FindPendingCaseByUsername(%q): blank name must not be an error, got %v", username, err)
		}
		if c != nil {
			t.Errorf("FindPendingCaseByUsername(%q): expected nil case, got %+v", username, c)
		}
	}
}

func TestSQLiteStorage_FindPendingCaseByUsername_MostRecentWins(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	newer := insertCase(t, store, "Alex Doe", "2025-12-02 09:00:00")
	older := insertCase(t, store, "alex doe", "2025-12-01 10:00:00")

	c, err := store.FindPendingCaseByUsername(ctx, "ALEX DOE")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c == nil || c.ID != newer {
		t.Fatalf("Expected newer case %d, got %+v (older is %d)", newer, c, older)
	}

	// Resolving the newer case exposes the older one.
	if _, err := store.UpdateCaseStatus(ctx, newer, model.StatusNotFraud, ""); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	c, err = store.FindPendingCaseByUsername(ctx, "alex doe")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c == nil || c.ID != older {
		t.Errorf("Expected older case %d after resolving newer, got %+v", older, c)
	}
}

func TestSQLiteStorage_FindPendingCaseByUsername_TieBreak(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	insertCase(t, store, "Sam Tie", "2025-12-01 10:00:00")
	second := insertCase(t, store, "Sam Tie", "2025-12-01 10:00:00")

	c, err := store.FindPendingCaseByUsername(context.Background(), "sam tie")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c == nil || c.ID != second {
		t.Errorf("Expected later insert %d on equal timestamps, got %+v", second, c)
	}
}

func TestSQLiteStorage_UpdateCaseStatus(t *testing.T) {
	fixed := time.Date(2026, 1, 15, 12, 30, 0, 0, time.UTC)
	store, cleanup := createTestStorage(t, WithClock(func() time.Time { return fixed }))
	defer cleanup()
	ctx := context.Background()

	before, err := store.FindPendingCaseByUsername(ctx, "Lisa Anderson")
	if err != nil || before == nil {
		t.Fatalf("Failed to find seed case: %v", err)
	}

	updated, err := store.UpdateCaseStatus(ctx, before.ID, model.StatusNotFraud, "customer confirmed")
	if err != nil {
		t.Fatalf("Failed to update case: %v", err)
	}
	if !updated {
		t.Fatal("Expected update to report a changed row")
	}

	after, err := store.GetCase(ctx, before.ID)
	if err != nil || after == nil {
		t.Fatalf("Failed to get case: %v", err)
	}
	if after.Status != model.StatusNotFraud {
		t.Errorf("Status = %q, want not_fraud", after.Status)
	}
	if after.Note() != "customer confirmed" {
		t.Errorf("OutcomeNote = %q, want %q", after.Note(), "customer confirmed")
	}
	if !after.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", after.UpdatedAt, fixed)
	}
	if after.UpdatedAt.Before(before.UpdatedAt) {
		t.Errorf("UpdatedAt moved backwards: %v < %v", after.UpdatedAt, before.UpdatedAt)
	}
	if after.UpdatedAt.Before(after.CreatedAt) {
		t.Errorf("UpdatedAt %v is before CreatedAt %v", after.UpdatedAt, after.CreatedAt)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}
}

func TestSQLiteStorage_UpdateCaseStatus_RealClock(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	start := time.Now().UTC().Truncate(time.Second)
	if _, err := store.UpdateCaseStatus(ctx, 2, model.StatusConfirmedFraud, "verified"); err != nil {
		t.Fatalf("Failed to update case: %v", err)
	}

	c, err := store.GetCase(ctx, 2)
	if err != nil || c == nil {
		t.Fatalf("Failed to get case: %v", err)
	}
	if c.UpdatedAt.Before(start) {
		t.Errorf("UpdatedAt %v is before the update started (%v)", c.UpdatedAt, start)
	}
}

func TestSQLiteStorage_UpdateCaseStatus_RemovesFromPending(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	c, err := store.FindPendingCaseByUsername(ctx, "Michael Chen")
	if err != nil || c == nil {
		t.Fatalf("Failed to find seed case: %v", err)
	}

	if _, err := store.UpdateCaseStatus(ctx, c.ID, model.StatusConfirmedFraud, "verified"); err != nil {
		t.Fatalf("Failed to update case: %v", err)
	}

	again, err := store.FindPendingCaseByUsername(ctx, "Michael Chen")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if again != nil {
		t.Errorf("Resolved case should no longer be pending, got %+v", again)
	}
}

func TestSQLiteStorage_UpdateCaseStatus_UnknownID(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	before, err := store.ListAllCases(ctx)
	if err != nil {
		t.Fatalf("Failed to list cases: %v", err)
	}

	updated, err := store.UpdateCaseStatus(ctx, 9999, "x", "y")
	if err != nil {
		t.Fatalf("Unknown id must not be an error, got %v", err)
	}
	if updated {
		t.Error("Expected false for an unknown id")
	}

	after, err := store.ListAllCases(ctx)
	if err != nil {
		t.Fatalf("Failed to list cases: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("Table changed after updating an unknown id")
	}
}

func TestSQLiteStorage_UpdateCaseStatus_AnyStatus(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	updated, err := store.UpdateCaseStatus(ctx, 3, "escalated_to_police", "")
	if err != nil {
		t.Fatalf("Arbitrary status should be accepted, got %v", err)
	}
	if !updated {
		t.Fatal("Expected update to succeed")
	}

	c, err := store.GetCase(ctx, 3)
	if err != nil || c == nil {
		t.Fatalf("Failed to get case: %v", err)
	}
	if c.Status != "escalated_to_police" {
		t.Errorf("Status = %q, want escalated_to_police", c.Status)
	}
	if c.OutcomeNote == nil || *c.OutcomeNote != "" {
		t.Errorf("Empty note should be stored as an empty string, got %v", c.OutcomeNote)
	}
}

func TestSQLiteStorage_UpdateCaseStatus_Strict(t *testing.T) {
	store, cleanup := createTestStorage(t, WithStrictStatus(true))
	defer cleanup()
	ctx := context.Background()

	updated, err := store.UpdateCaseStatus(ctx, 3, "escalated_to_police", "")
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("Expected ErrUnknownStatus, got %v", err)
	}
	if updated {
		t.Error("Rejected status must not report an update")
	}

	updated, err = store.UpdateCaseStatus(ctx, 3, model.StatusVerificationFailed, "wrong answer")
	if err != nil || !updated {
		t.Errorf("Known status should be accepted in strict mode: updated=%v err=%v", updated, err)
	}
}

func TestSQLiteStorage_ListAllCases_Ordering(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	cases, err := store.ListAllCases(context.Background())
	if err != nil {
		t.Fatalf("Failed to list cases: %v", err)
	}
	if len(cases) != 8 {
		t.Fatalf("Expected 8 cases, got %d", len(cases))
	}

	for i := 1; i < len(cases); i++ {
		if cases[i].CreatedAt.After(cases[i-1].CreatedAt) {
			t.Errorf("Cases not ordered newest first at %d: %v after %v",
				i, cases[i].CreatedAt, cases[i-1].CreatedAt)
		}
	}

	if cases[0].UserName != "David Thompson" {
		t.Errorf("First case = %q, want David Thompson", cases[0].UserName)
	}
	if cases[len(cases)-1].UserName != "Robert Martinez" {
		t.Errorf("Last case = %q, want Robert Martinez", cases[len(cases)-1].UserName)
	}

	want := time.Date(2025, 11, 27, 4, 22, 9, 0, time.UTC)
	if !cases[0].CreatedAt.Equal(want) {
		t.Errorf("David Thompson CreatedAt = %v, want %v", cases[0].CreatedAt, want)
	}
}

func TestSQLiteStorage_ListAllCases_SeedFields(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	cases, err := store.ListAllCases(context.Background())
	if err != nil {
		t.Fatalf("Failed to list cases: %v", err)
	}

	categories := make(map[string]bool)
	names := make(map[string]bool)
	for _, c := range cases {
		categories[c.TransactionCategory] = true
		names[c.UserName] = true

		if c.SecurityIdentifier == "" || c.CardEnding == "" || c.TransactionName == "" ||
			c.TransactionTime == "" || c.TransactionSource == "" || c.TransactionLocation == "" ||
			c.SecurityQuestion == "" || c.SecurityAnswer == "" {
			t.Errorf("Seed case %q has an empty field: %+v", c.UserName, c)
		}
		if c.TransactionAmount < 2500 || c.TransactionAmount > 15750 {
			t.Errorf("Seed case %q amount %v out of range", c.UserName, c.TransactionAmount)
		}
		if c.OutcomeNote != nil {
			t.Errorf("Seed case %q should have no outcome note", c.UserName)
		}
	}

	for _, cat := range []string{
		"wire_transfer", "cryptocurrency", "government_impersonation", "retail_fraud",
		"tech_support_scam", "romance_scam", "phishing", "lottery_scam",
	} {
		if !categories[cat] {
			t.Errorf("Missing seed category %q", cat)
		}
	}
	if len(names) != 8 {
		t.Errorf("Expected 8 distinct user names, got %d", len(names))
	}
}

func TestSQLiteStorage_ListAllCases_Empty(t *testing.T) {
	store, err := NewSQLiteStorage(memoryPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	if err := store.ensureSchema(ctx); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	cases, err := store.ListAllCases(ctx)
	if err != nil {
		t.Fatalf("Failed to list cases: %v", err)
	}
	if cases == nil || len(cases) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", cases)
	}
}

func TestSQLiteStorage_ListCases_Filter(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.UpdateCaseStatus(ctx, 1, model.StatusConfirmedFraud, "verified"); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	if _, err := store.UpdateCaseStatus(ctx, 2, model.StatusConfirmedFraud, "verified"); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	tests := []struct {
		name   string
		filter model.CaseFilter
		want   int
	}{
		{"no filter", model.CaseFilter{}, 8},
		{"confirmed", model.CaseFilter{Status: model.StatusConfirmedFraud}, 2},
		{"pending", model.CaseFilter{Status: model.StatusPendingReview}, 6},
		{"user", model.CaseFilter{UserName: "jennifer lee"}, 1},
		{"category", model.CaseFilter{Category: "phishing"}, 1},
		{"limit", model.CaseFilter{Limit: 3}, 3},
		{"combined miss", model.CaseFilter{UserName: "John Smith", Status: model.StatusPendingReview}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cases, err := store.ListCases(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Failed to list cases: %v", err)
			}
			if len(cases) != tt.want {
				t.Errorf("Got %d cases, want %d", len(cases), tt.want)
			}
		})
	}

	pending, err := store.CountCasesByStatus(ctx, model.StatusPendingReview)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if pending != 6 {
		t.Errorf("Pending count = %d, want 6", pending)
	}
}

func TestSQLiteStorage_GetCase_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	c, err := store.GetCase(context.Background(), 4242)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c != nil {
		t.Errorf("Expected nil, got %+v", c)
	}
}

func TestSQLiteStorage_VerifySecurityAnswer(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	c, err := store.FindPendingCaseByUsername(ctx, "Emily Rodriguez")
	if err != nil || c == nil {
		t.Fatalf("Failed to find seed case: %v", err)
	}

	tests := []struct {
		answer string
		want   bool
	}{
		{"Max", true},
		{"  max ", true},
		{"MAX", true},
		{"Maxine", false},
		{"", false},
	}

	for _, tt := range tests {
		got, err := store.VerifySecurityAnswer(ctx, c.ID, tt.answer)
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", tt.answer, err)
		}
		if got != tt.want {
			t.Errorf("VerifySecurityAnswer(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}

	_, err = store.VerifySecurityAnswer(ctx, 9999, "Max")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown case, got %v", err)
	}
}
