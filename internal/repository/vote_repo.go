package repository

import (
	"context"

	"study_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type VoteRepository struct {
	db *pgxpool.Pool
}

func NewVoteRepository(db *pgxpool.Pool) *VoteRepository {
	return &VoteRepository{db: db}
}

// CastVote increments the yes or no tally for a link. The upsert makes the
// increment atomic under concurrent voters; repeat votes are allowed.
func (r *VoteRepository) CastVote(ctx context.Context, linkID string, yes bool) (*domain.VoteRecord, error) {
	var query string
	if yes {
		query = `INSERT INTO link_votes (link_id, yes_count, no_count) VALUES ($1, 1, 0)
			 ON CONFLICT (link_id) DO UPDATE SET yes_count = link_votes.yes_count + 1
			 RETURNING link_id, yes_count, no_count`
	} else {
		query = `INSERT INTO link_votes (link_id, yes_count, no_count) VALUES ($1, 0, 1)
			 ON CONFLICT (link_id) DO UPDATE SET no_count = link_votes.no_count + 1
			 RETURNING link_id, yes_count, no_count`
	}

	var v domain.VoteRecord
	if err := r.db.QueryRow(ctx, query, linkID).Scan(&v.LinkID, &v.Yes, &v.No); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVotes returns tallies for the given links; links never voted on are
// simply absent from the result.
func (r *VoteRepository) GetVotes(ctx context.Context, linkIDs []string) (map[string]domain.VoteRecord, error) {
	if len(linkIDs) == 0 {
		return map[string]domain.VoteRecord{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT link_id, yes_count, no_count FROM link_votes WHERE link_id = ANY($1)`,
		linkIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string]domain.VoteRecord)
	for rows.Next() {
		var v domain.VoteRecord
		if err := rows.Scan(&v.LinkID, &v.Yes, &v.No); err != nil {
			return nil, err
		}
		res[v.LinkID] = v
	}
	return res, rows.Err()
}
