package storage

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/Veraticus/fraud-desk/internal/common"
	"github.com/Veraticus/fraud-desk/internal/model"
)

// caseColumns is the fixed projection scanned by scanCase, in order.
var caseColumns = []string{
	"id",
	"userName",
	"securityIdentifier",
	"cardEnding",
	"status",
	"transactionName",
	"transactionAmount",
	"transactionTime",
	"transactionCategory",
	"transactionSource",
	"transactionLocation",
	"securityQuestion",
	"securityAnswer",
	"outcomeNote",
	"createdAt",
	"updatedAt",
}

// newestFirst orders by creation time; equal timestamps fall back to the
// later insert.
var newestFirst = []string{"createdAt DESC", "id DESC"}

func selectCases() sq.SelectBuilder {
	return sq.Select(caseColumns...).From(casesTable)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*model.FraudCase, error) {
	var (
		c      model.FraudCase
		status string
		note   sql.NullString
	)

	err := row.Scan(
		&c.ID,
		&c.UserName,
		&c.SecurityIdentifier,
		&c.CardEnding,
		&status,
		&c.TransactionName,
		&c.TransactionAmount,
		&c.TransactionTime,
		&c.TransactionCategory,
		&c.TransactionSource,
		&c.TransactionLocation,
		&c.SecurityQuestion,
		&c.SecurityAnswer,
		&note,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = model.CaseStatus(status)
	if note.Valid {
		c.OutcomeNote = &note.String
	}

	return &c, nil
}

// FindPendingCaseByUsername returns the most recently created pending case
// whose user name matches username case-insensitively.
// It returns nil, nil when there is no such case, including for a blank username.
func (s *SQLiteStorage) FindPendingCaseByUsername(ctx context.Context, username string) (*model.FraudCase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(username) == "" {
		return nil, nil
	}

	query := selectCases().
		Where("LOWER(userName) = LOWER(?)", username).
		Where(sq.Eq{"status": string(model.StatusPendingReview)}).
		OrderBy(newestFirst...).
		Limit(1)

	c, err := s.getCase(ctx, s.db, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending case: %w", err)
	}

	common.LogDebug("Looked up pending fraud case", common.Fields{"username": username, "found": c != nil})
	return c, nil
}

// GetCase retrieves a case by id. It returns nil, nil when the id is unknown.
func (s *SQLiteStorage) GetCase(ctx context.Context, id int64) (*model.FraudCase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	c, err := s.getCase(ctx, s.db, selectCases().Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("failed to get case %d: %w", id, err)
	}
	return c, nil
}

func (s *SQLiteStorage) getCase(ctx context.Context, q queryable, query sq.SelectBuilder) (*model.FraudCase, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanCase(q.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCaseStatus records an outcome for the case with the given id and
// refreshes its updatedAt. It returns false, nil when no case has that id.
func (s *SQLiteStorage) UpdateCaseStatus(ctx context.Context, caseID int64, status model.CaseStatus, outcomeNote string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateStatus(status, s.strictStatus); err != nil {
		return false, err
	}

	sqlStr, args, err := sq.Update(casesTable).
		Set("status", string(status)).
		Set("outcomeNote", outcomeNote).
		Set("updatedAt", s.now().UTC()).
		Where(sq.Eq{"id": caseID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update case %d: %w", caseID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		slog.Warn("No fraud case to update", "case_id", caseID)
		return false, nil
	}

	common.LogInfo("Updated fraud case", common.Fields{"case_id": caseID, "status": string(status)})
	return true, nil
}

// ListAllCases returns every case, newest first.
func (s *SQLiteStorage) ListAllCases(ctx context.Context) ([]model.FraudCase, error) {
	return s.ListCases(ctx, model.CaseFilter{})
}

// ListCases returns the cases matching filter, newest first.
func (s *SQLiteStorage) ListCases(ctx context.Context, filter model.CaseFilter) ([]model.FraudCase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := selectCases().OrderBy(newestFirst...)
	if filter.Status != "" {
		query = query.Where(sq.Eq{"status": string(filter.Status)})
	}
	if strings.TrimSpace(filter.UserName) != "" {
		query = query.Where("LOWER(userName) = LOWER(?)", filter.UserName)
	}
	if filter.Category != "" {
		query = query.Where(sq.Eq{"transactionCategory": filter.Category})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	return s.listCases(ctx, s.db, query)
}

func (s *SQLiteStorage) listCases(ctx context.Context, q queryable, query sq.SelectBuilder) ([]model.FraudCase, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build case query: %w", err)
	}

	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cases := []model.FraudCase{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cases: %w", err)
	}

	return cases, nil
}

// CountCases returns the number of stored cases.
func (s *SQLiteStorage) CountCases(ctx context.Context) (int, error) {
	return s.countCases(ctx, sq.Eq{})
}

// CountCasesByStatus returns the number of cases in the given status.
func (s *SQLiteStorage) CountCasesByStatus(ctx context.Context, status model.CaseStatus) (int, error) {
	return s.countCases(ctx, sq.Eq{"status": string(status)})
}

func (s *SQLiteStorage) countCases(ctx context.Context, where sq.Eq) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	query := sq.Select("COUNT(*)").From(casesTable)
	if len(where) > 0 {
		query = query.Where(where)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cases: %w", err)
	}
	return count, nil
}

// VerifySecurityAnswer reports whether answer matches the stored security
// answer of the case, ignoring case and surrounding whitespace.
func (s *SQLiteStorage) VerifySecurityAnswer(ctx context.Context, caseID int64, answer string) (bool, error) {
	c, err := s.GetCase(ctx, caseID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, fmt.Errorf("case %d: %w", caseID, common.ErrNotFound)
	}

	return answersMatch(c.SecurityAnswer, answer), nil
}

func answersMatch(stored, given string) bool {
	a := strings.ToLower(strings.TrimSpace(stored))
	b := strings.ToLower(strings.TrimSpace(given))
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
