package service

import (
	"context"
	"errors"

	"study_webapp/internal/domain"
	"study_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreditLedger owns every credit movement. Earns raise credits and the
// lifetime total_earned together; spends lower credits only, so the tier
// never drops. All writes are store-side deltas, never read-modify-write.
type CreditLedger struct {
	db      *pgxpool.Pool
	entries *repository.LedgerRepository
}

func NewCreditLedger(db *pgxpool.Pool) *CreditLedger {
	return &CreditLedger{
		db:      db,
		entries: repository.NewLedgerRepository(db),
	}
}

// GetBalance returns the spendable balance.
func (s *CreditLedger) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := s.db.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}

// Earn credits the account and records the journal entry in one
// transaction.
func (s *CreditLedger) Earn(ctx context.Context, userID, amount int64, txType domain.TransactionType, meta map[string]any) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newBalance, err = s.EarnWithTx(ctx, tx, userID, amount, txType, meta)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// EarnWithTx credits the account within an existing transaction.
func (s *CreditLedger) EarnWithTx(ctx context.Context, tx pgx.Tx, userID, amount int64, txType domain.TransactionType, meta map[string]any) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	err = tx.QueryRow(ctx,
		`UPDATE users
		 SET credits = credits + $1, total_earned = total_earned + $1
		 WHERE id = $2
		 RETURNING credits`,
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}

	entry := &domain.LedgerEntry{UserID: userID, Type: txType, Amount: amount, Meta: meta}
	if err = s.entries.CreateWithTx(ctx, tx, entry); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Spend deducts credits and records the journal entry in one transaction.
// The decrement is conditional on sufficient balance, so two concurrent
// spends can never drive the balance negative.
func (s *CreditLedger) Spend(ctx context.Context, userID, amount int64, txType domain.TransactionType, meta map[string]any) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newBalance, err = s.SpendWithTx(ctx, tx, userID, amount, txType, meta)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// SpendWithTx deducts credits within an existing transaction.
func (s *CreditLedger) SpendWithTx(ctx context.Context, tx pgx.Tx, userID, amount int64, txType domain.TransactionType, meta map[string]any) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	err = tx.QueryRow(ctx,
		`UPDATE users SET credits = credits - $1
		 WHERE id = $2 AND credits >= $1
		 RETURNING credits`,
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Not found or insufficient, check which
			var exists bool
			_ = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
			if !exists {
				return 0, domain.ErrUserNotFound
			}
			return 0, domain.ErrInsufficientBalance
		}
		return 0, err
	}

	entry := &domain.LedgerEntry{UserID: userID, Type: txType, Amount: -amount, Meta: meta}
	if err = s.entries.CreateWithTx(ctx, tx, entry); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// GetHistory returns the user's journal, newest first.
func (s *CreditLedger) GetHistory(ctx context.Context, userID int64, limit int) ([]*domain.LedgerEntry, error) {
	return s.entries.GetByUserID(ctx, userID, limit)
}
