package repository

import (
	"context"

	"study_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListGroups returns every content group with its member links in catalog
// order.
func (r *CatalogRepository) ListGroups(ctx context.Context) ([]domain.ContentGroup, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, cost, policy, sort_order, created_at
		 FROM content_groups
		 ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.ContentGroup
	byID := make(map[string]int)
	for rows.Next() {
		var g domain.ContentGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Cost, &g.Policy, &g.SortOrder, &g.CreatedAt); err != nil {
			return nil, err
		}
		byID[g.ID] = len(groups)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	linkRows, err := r.db.Query(ctx,
		`SELECT group_id, link_id FROM group_links ORDER BY group_id, sort_order, link_id`)
	if err != nil {
		return nil, err
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var groupID, linkID string
		if err := linkRows.Scan(&groupID, &linkID); err != nil {
			return nil, err
		}
		if i, ok := byID[groupID]; ok {
			groups[i].LinkIDs = append(groups[i].LinkIDs, linkID)
		}
	}
	return groups, linkRows.Err()
}

// GetGroupByLink finds the group a link belongs to.
func (r *CatalogRepository) GetGroupByLink(ctx context.Context, linkID string) (*domain.ContentGroup, error) {
	var g domain.ContentGroup
	err := r.db.QueryRow(ctx,
		`SELECT g.id, g.name, g.cost, g.policy, g.sort_order, g.created_at
		 FROM content_groups g
		 JOIN group_links l ON l.group_id = g.id
		 WHERE l.link_id = $1`,
		linkID,
	).Scan(&g.ID, &g.Name, &g.Cost, &g.Policy, &g.SortOrder, &g.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT link_id FROM group_links WHERE group_id = $1 ORDER BY sort_order, link_id`, g.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		g.LinkIDs = append(g.LinkIDs, id)
	}
	return &g, rows.Err()
}

// GetUnlocks returns the user's unlock set (item keys and group ids).
func (r *CatalogRepository) GetUnlocks(ctx context.Context, userID int64) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT item_key FROM unlocks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		res[key] = true
	}
	return res, rows.Err()
}

// AddUnlockWithTx records an unlock inside the purchase transaction. The
// insert is an atomic set-add: concurrent purchases of different items
// cannot overwrite each other.
func (r *CatalogRepository) AddUnlockWithTx(ctx context.Context, tx pgx.Tx, userID int64, itemKey string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO unlocks (user_id, item_key) VALUES ($1, $2)
		 ON CONFLICT (user_id, item_key) DO NOTHING`,
		userID, itemKey,
	)
	return err
}

// SeedGroup inserts or refreshes a catalog group with its links. Used by the
// seed command.
func (r *CatalogRepository) SeedGroup(ctx context.Context, g domain.ContentGroup) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO content_groups (id, name, cost, policy, sort_order)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET name = $2, cost = $3, policy = $4, sort_order = $5`,
		g.ID, g.Name, g.Cost, g.Policy, g.SortOrder,
	)
	if err != nil {
		return err
	}

	for i, linkID := range g.LinkIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO group_links (group_id, link_id, sort_order) VALUES ($1, $2, $3)
			 ON CONFLICT (group_id, link_id) DO UPDATE SET sort_order = $3`,
			g.ID, linkID, i,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
