package domain

// Tier is a rank derived from lifetime-earned credits. Spending never
// demotes a user: the lookup key is TotalEarned, not Credits.
type Tier struct {
	Name         string `json:"name"`
	MinCredits   int64  `json:"min_credits"`
	LimitMinutes int64  `json:"limit_minutes"` // daily gated-content allowance
	Color        string `json:"color"`
}

// Tiers is ordered by MinCredits ascending.
var Tiers = []Tier{
	{Name: "Basic", MinCredits: 0, LimitMinutes: 60, Color: "#9CA3AF"},
	{Name: "Silver", MinCredits: 500, LimitMinutes: 120, Color: "#C0C0C0"},
	{Name: "Gold", MinCredits: 1500, LimitMinutes: 240, Color: "#FFD700"},
	{Name: "VIP", MinCredits: 5000, LimitMinutes: 480, Color: "#8B5CF6"},
}

// TierOf returns the highest tier whose threshold is <= totalEarned.
// Negative input is treated as zero.
func TierOf(totalEarned int64) Tier {
	if totalEarned < 0 {
		totalEarned = 0
	}
	cur := Tiers[0]
	for _, t := range Tiers {
		if totalEarned >= t.MinCredits {
			cur = t
		}
	}
	return cur
}

// TierProgress describes how far a user is from the next tier.
type TierProgress struct {
	NextTier    *Tier   `json:"next_tier,omitempty"`
	Remaining   int64   `json:"remaining"`
	ProgressPct float64 `json:"progress_pct"`
}

// ProgressToNext reports the credits remaining until the next tier and the
// percentage already covered. At the top tier the progress is 100 and there
// is no next tier.
func ProgressToNext(totalEarned int64) TierProgress {
	if totalEarned < 0 {
		totalEarned = 0
	}
	cur := TierOf(totalEarned)
	for i, t := range Tiers {
		if t.Name == cur.Name && i+1 < len(Tiers) {
			next := Tiers[i+1]
			remaining := next.MinCredits - totalEarned
			if remaining < 0 {
				remaining = 0
			}
			if remaining == 0 {
				return TierProgress{NextTier: &next, Remaining: 0, ProgressPct: 100}
			}
			pct := float64(totalEarned) / float64(totalEarned+remaining) * 100
			if pct > 100 {
				pct = 100
			}
			return TierProgress{NextTier: &next, Remaining: remaining, ProgressPct: pct}
		}
	}
	return TierProgress{NextTier: nil, Remaining: 0, ProgressPct: 100}
}
