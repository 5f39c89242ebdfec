package domain

// VoteRecord is the crowd-sourced "did this link work" tally. Counters only
// ever grow; repeat votes from the same user are allowed.
type VoteRecord struct {
	LinkID string `db:"link_id" json:"link_id"`
	Yes    int64  `db:"yes_count" json:"yes"`
	No     int64  `db:"no_count" json:"no"`
}
