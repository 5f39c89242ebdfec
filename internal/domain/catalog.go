package domain

import "time"

// UnlockPolicy determines what a purchase of a group member grants.
type UnlockPolicy string

const (
	// UnlockWholeGroup - one purchase unlocks every link in the group.
	UnlockWholeGroup UnlockPolicy = "whole_group"
	// UnlockPerItem - each link must be purchased on its own.
	UnlockPerItem UnlockPolicy = "per_item"
)

// ContentGroup is a gated set of study links with a credit cost.
type ContentGroup struct {
	ID        string       `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	LinkIDs   []string     `json:"link_ids"`
	Cost      int64        `db:"cost" json:"cost"`
	Policy    UnlockPolicy `db:"policy" json:"policy"`
	SortOrder int          `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// UnlockKey returns the identifier recorded in the user's unlock set when
// linkID of this group is purchased.
func (g ContentGroup) UnlockKey(linkID string) string {
	if g.Policy == UnlockPerItem {
		return linkID
	}
	return g.ID
}

// IsUnlocked reports whether linkID of group g is accessible given the
// user's unlock set. Free groups are always open.
func IsUnlocked(g ContentGroup, linkID string, unlocked map[string]bool) bool {
	if g.Cost == 0 {
		return true
	}
	if unlocked[linkID] {
		return true
	}
	return g.Policy == UnlockWholeGroup && unlocked[g.ID]
}
