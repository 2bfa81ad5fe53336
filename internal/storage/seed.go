package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/fraud-desk/internal/common"
	"github.com/Veraticus/fraud-desk/internal/model"
)

// SeedCases are inserted exactly once, into an empty table. Each row's
// createdAt and updatedAt are taken from its TransactionTime.
var SeedCases = []model.FraudCase{
	{
		UserName:            "John Smith",
		SecurityIdentifier:  "12345",
		CardEnding:          "4242",
		Status:              model.StatusPendingReview,
		TransactionName:     "URGENT WIRE TRANSFER",
		TransactionAmount:   9999.99,
		TransactionTime:     "2025-11-27 03:47:22",
		TransactionCategory: "wire_transfer",
		TransactionSource:   "suspicious-payment-gateway.xyz",
		TransactionLocation: "Lagos, Nigeria",
		SecurityQuestion:    "What is your mother's maiden name?",
		SecurityAnswer:      "Johnson",
	},
	{
		UserName:            "Sarah Williams",
		SecurityIdentifier:  "67890",
		CardEnding:          "8765",
		Status:              model.StatusPendingReview,
		TransactionName:     "Bitcoin Investment Scheme",
		TransactionAmount:   15750.00,
		TransactionTime:     "2025-11-27 02:18:33",
		TransactionCategory: "cryptocurrency",
		TransactionSource:   "crypto-scam-invest.ru",
		TransactionLocation: "Moscow, Russia",
		SecurityQuestion:    "What city were you born in?",
		SecurityAnswer:      "Boston",
	},
	{
		UserName:            "Michael Chen",
		SecurityIdentifier:  "54321",
		CardEnding:          "1111",
		Status:              model.StatusPendingReview,
		TransactionName:     "Fake IRS Tax Payment",
		TransactionAmount:   8500.00,
		TransactionTime:     "2025-11-26 23:12:45",
		TransactionCategory: "government_impersonation",
		TransactionSource:   "irs-payment-urgent.cn",
		TransactionLocation: "Beijing, China",
		SecurityQuestion:    "What is your favorite color?",
		SecurityAnswer:      "Blue",
	},
	{
		UserName:            "Emily Rodriguez",
		SecurityIdentifier:  "98765",
		CardEnding:          "3333",
		Status:              model.StatusPendingReview,
		TransactionName:     "Luxury Goods Scam Ltd",
		TransactionAmount:   12499.99,
		TransactionTime:     "2025-11-27 01:55:18",
		TransactionCategory: "retail_fraud",
		TransactionSource:   "luxury-deals-fake.io",
		TransactionLocation: "Unknown Location, Romania",
		SecurityQuestion:    "What is your pet's name?",
		SecurityAnswer:      "Max",
	},
	{
		UserName:            "David Thompson",
		SecurityIdentifier:  "11111",
		CardEnding:          "7777",
		Status:              model.StatusPendingReview,
		TransactionName:     "Tech Support Scam Payment",
		TransactionAmount:   4999.00,
		TransactionTime:     "2025-11-27 04:22:09",
		TransactionCategory: "tech_support_scam",
		TransactionSource:   "microsoft-support-fake.xyz",
		TransactionLocation: "Kolkata, India",
		SecurityQuestion:    "What is your favorite food?",
		SecurityAnswer:      "Pizza",
	},
	{
		UserName:            "Lisa Anderson",
		SecurityIdentifier:  "22222",
		CardEnding:          "5555",
		Status:              model.StatusPendingReview,
		TransactionName:     "Romance Scam Wire Transfer",
		TransactionAmount:   7800.00,
		TransactionTime:     "2025-11-27 00:33:51",
		TransactionCategory: "romance_scam",
		TransactionSource:   "dating-scam-payment.net",
		TransactionLocation: "Accra, Ghana",
		SecurityQuestion:    "What was your first car?",
		SecurityAnswer:      "Honda",
	},
	{
		UserName:            "Robert Martinez",
		SecurityIdentifier:  "33333",
		CardEnding:          "9999",
		Status:              model.StatusPendingReview,
		TransactionName:     "Phishing Site Purchase",
		TransactionAmount:   3299.99,
		TransactionTime:     "2025-11-26 22:47:12",
		TransactionCategory: "phishing",
		TransactionSource:   "amaz0n-deals.com",
		TransactionLocation: "Manila, Philippines",
		SecurityQuestion:    "What is your favorite movie?",
		SecurityAnswer:      "Inception",
	},
	{
		UserName:            "Jennifer Lee",
		SecurityIdentifier:  "44444",
		CardEnding:          "2222",
		Status:              model.StatusPendingReview,
		TransactionName:     "Lottery Scam Fee Payment",
		TransactionAmount:   2500.00,
		TransactionTime:     "2025-11-27 03:15:44",
		TransactionCategory: "lottery_scam",
		TransactionSource:   "mega-lottery-winner.org",
		TransactionLocation: "Kingston, Jamaica",
		SecurityQuestion:    "What is your mother's maiden name?",
		SecurityAnswer:      "Wilson",
	},
}

const insertSeedCase = `
	INSERT INTO fraud_cases (
		userName, securityIdentifier, cardEnding, status,
		transactionName, transactionAmount, transactionTime,
		transactionCategory, transactionSource, transactionLocation,
		securityQuestion, securityAnswer, createdAt, updatedAt
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// seedIfEmpty inserts SeedCases when the table has no rows.
// It returns without writing when any row exists.
func (s *SQLiteStorage) seedIfEmpty(ctx context.Context) error {
	count, err := s.CountCases(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		common.LogInfo("Database already contains fraud cases", common.Fields{"count": count})
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSeedCase)
	if err != nil {
		return fmt.Errorf("failed to prepare seed statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range SeedCases {
		c := &SeedCases[i]
		_, err := stmt.ExecContext(ctx,
			c.UserName,
			c.SecurityIdentifier,
			c.CardEnding,
			string(c.Status),
			c.TransactionName,
			c.TransactionAmount,
			c.TransactionTime,
			c.TransactionCategory,
			c.TransactionSource,
			c.TransactionLocation,
			c.SecurityQuestion,
			c.SecurityAnswer,
			c.TransactionTime,
			c.TransactionTime,
		)
		if err != nil {
			return fmt.Errorf("failed to insert seed case for %s: %w", c.UserName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed cases: %w", err)
	}

	common.LogInfo("Initialized database with sample fraud cases", common.Fields{"count": len(SeedCases)})
	return nil
}
