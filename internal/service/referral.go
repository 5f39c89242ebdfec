package service

import (
	"context"
	"crypto/rand"
	"errors"

	"study_webapp/internal/domain"
	"study_webapp/internal/logger"
	"study_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// GenerateReferralCode returns a random 6-character uppercase alphanumeric
// code. Uniqueness is enforced at insert time; callers retry on collision.
func GenerateReferralCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// ReferralEngine attributes signups to referral codes and pays the
// two-sided bonus.
type ReferralEngine struct {
	db            *pgxpool.Pool
	referrals     *repository.ReferralRepository
	ledger        *CreditLedger
	referrerBonus int64
	welcomeBonus  int64
}

func NewReferralEngine(db *pgxpool.Pool, ledger *CreditLedger, referrerBonus, welcomeBonus int64) *ReferralEngine {
	return &ReferralEngine{
		db:            db,
		referrals:     repository.NewReferralRepository(db),
		ledger:        ledger,
		referrerBonus: referrerBonus,
		welcomeBonus:  welcomeBonus,
	}
}

// Attribute credits both sides of a referral at account creation. An
// unknown code is a silent no-op: signup proceeds without reward. The
// referral row, both grants and the referred_by pointer commit together.
func (s *ReferralEngine) Attribute(ctx context.Context, newUserID int64, code string) error {
	if code == "" {
		return nil
	}

	referrerID, err := s.referrals.GetUserByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("referral code not found, skipping attribution", "code", code)
			return nil
		}
		return err
	}
	if referrerID == newUserID {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted, err := s.referrals.CreateWithTx(ctx, tx, referrerID, newUserID)
	if err != nil {
		return err
	}
	if !inserted {
		// already attributed to someone; never pay twice
		return nil
	}

	meta := map[string]any{"referred_id": newUserID}
	if _, err := s.ledger.EarnWithTx(ctx, tx, referrerID, s.referrerBonus, domain.TxReferralBonus, meta); err != nil {
		return err
	}

	meta = map[string]any{"referrer_id": referrerID}
	if _, err := s.ledger.EarnWithTx(ctx, tx, newUserID, s.welcomeBonus, domain.TxReferralWelcome, meta); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info("referral attributed", "referrer", referrerID, "referred", newUserID)
	return nil
}

// Stats returns the user's referral count, bonus earnings and referral list.
func (s *ReferralEngine) Stats(ctx context.Context, userID int64) (*repository.ReferralStats, []repository.Referral, error) {
	stats, err := s.referrals.GetStats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	referrals, err := s.referrals.GetReferralsByUser(ctx, userID)
	if err != nil {
		referrals = []repository.Referral{}
	}
	return stats, referrals, nil
}
