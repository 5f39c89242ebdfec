package repository

import (
	"context"
	"encoding/json"

	"study_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CreateWithTx appends a journal entry inside an existing transaction so the
// entry commits or rolls back together with the balance change it records.
func (r *LedgerRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	var meta []byte
	if e.Meta != nil {
		var err error
		meta, err = json.Marshal(e.Meta)
		if err != nil {
			return err
		}
	}
	return tx.QueryRow(ctx,
		`INSERT INTO ledger_entries (user_id, type, amount, meta)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.UserID, e.Type, e.Amount, meta,
	).Scan(&e.ID, &e.CreatedAt)
}

// GetByUserID returns the newest entries first.
func (r *LedgerRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, type, amount, COALESCE(meta, 'null'::jsonb), created_at
		 FROM ledger_entries
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Amount, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &e.Meta)
		}
		res = append(res, &e)
	}
	return res, rows.Err()
}
