package domain

import "time"

// TransactionType is the business reason behind a credit movement.
type TransactionType string

const (
	TxTaskReward      TransactionType = "task_reward"
	TxReferralBonus   TransactionType = "referral_bonus"
	TxReferralWelcome TransactionType = "referral_welcome"
	TxUnlockPurchase  TransactionType = "unlock_purchase"
	TxWeekReward      TransactionType = "week_reward"
)

// LedgerEntry is one row of the per-user credit journal. Amount is positive
// for earns and negative for spends.
type LedgerEntry struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Type      TransactionType `db:"type" json:"type"`
	Amount    int64           `db:"amount" json:"amount"`
	Meta      map[string]any  `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
