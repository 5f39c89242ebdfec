package service

import (
	"context"

	"study_webapp/internal/domain"
	"study_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnlockEngine processes catalog purchases. Spend and unlock land in one
// transaction, so a paid-but-not-unlocked state cannot occur.
type UnlockEngine struct {
	db      *pgxpool.Pool
	catalog *repository.CatalogRepository
	votes   *repository.VoteRepository
	ledger  *CreditLedger
}

func NewUnlockEngine(db *pgxpool.Pool, ledger *CreditLedger) *UnlockEngine {
	return &UnlockEngine{
		db:      db,
		catalog: repository.NewCatalogRepository(db),
		votes:   repository.NewVoteRepository(db),
		ledger:  ledger,
	}
}

// PurchaseResult is returned to the caller for user-facing messaging.
type PurchaseResult struct {
	ItemKey    string `json:"item_key"`
	Cost       int64  `json:"cost"`
	NewBalance int64  `json:"new_balance"`
}

// Purchase buys access to linkID of the given group. Whole-group purchases
// record the group id; per-item purchases record the link id. Buying
// something already unlocked is rejected before any charge.
func (s *UnlockEngine) Purchase(ctx context.Context, userID int64, group domain.ContentGroup, linkID string) (*PurchaseResult, error) {
	key := group.UnlockKey(linkID)

	unlocked, err := s.catalog.GetUnlocks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if domain.IsUnlocked(group, linkID, unlocked) {
		return nil, domain.ErrAlreadyUnlocked
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newBalance, err := s.ledger.SpendWithTx(ctx, tx, userID, group.Cost, domain.TxUnlockPurchase,
		map[string]any{"group_id": group.ID, "link_id": linkID, "item_key": key})
	if err != nil {
		return nil, err
	}

	if err := s.catalog.AddUnlockWithTx(ctx, tx, userID, key); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &PurchaseResult{ItemKey: key, Cost: group.Cost, NewBalance: newBalance}, nil
}

// Unlocked computes the user's access to every catalog link.
func (s *UnlockEngine) Unlocked(ctx context.Context, userID int64) (map[string]bool, []domain.ContentGroup, error) {
	groups, err := s.catalog.ListGroups(ctx)
	if err != nil {
		return nil, nil, err
	}
	unlockedSet, err := s.catalog.GetUnlocks(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	access := make(map[string]bool)
	for _, g := range groups {
		for _, linkID := range g.LinkIDs {
			access[linkID] = domain.IsUnlocked(g, linkID, unlockedSet)
		}
	}
	return access, groups, nil
}

// CanAccess reports whether one link is open to the user.
func (s *UnlockEngine) CanAccess(ctx context.Context, userID int64, linkID string) (bool, *domain.ContentGroup, error) {
	group, err := s.catalog.GetGroupByLink(ctx, linkID)
	if err != nil {
		return false, nil, err
	}
	unlocked, err := s.catalog.GetUnlocks(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	return domain.IsUnlocked(*group, linkID, unlocked), group, nil
}

// CastVote bumps the yes/no tally for a link. Votes are not deduplicated;
// a user may vote as often as they like.
func (s *UnlockEngine) CastVote(ctx context.Context, linkID string, yes bool) (*domain.VoteRecord, error) {
	return s.votes.CastVote(ctx, linkID, yes)
}

// Votes returns tallies for the given links.
func (s *UnlockEngine) Votes(ctx context.Context, linkIDs []string) (map[string]domain.VoteRecord, error) {
	return s.votes.GetVotes(ctx, linkIDs)
}
