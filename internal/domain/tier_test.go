package domain

import "testing"

func tierRank(name string) int {
	for i, t := range Tiers {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func TestTierOf_Thresholds(t *testing.T) {
	// each threshold is inclusive
	for _, tier := range Tiers {
		got := TierOf(tier.MinCredits)
		if got.Name != tier.Name {
			t.Errorf("TierOf(%d) = %s, want %s", tier.MinCredits, got.Name, tier.Name)
		}
	}

	if got := TierOf(-100); got.Name != "Basic" {
		t.Errorf("TierOf(-100) = %s, want Basic", got.Name)
	}
	if got := TierOf(499); got.Name != "Basic" {
		t.Errorf("TierOf(499) = %s, want Basic", got.Name)
	}
	if got := TierOf(1_000_000); got.Name != "VIP" {
		t.Errorf("TierOf(1000000) = %s, want VIP", got.Name)
	}
}

func TestTierOf_Monotonic(t *testing.T) {
	prev := -1
	for earned := int64(0); earned <= 6000; earned += 7 {
		rank := tierRank(TierOf(earned).Name)
		if rank < prev {
			t.Fatalf("tier rank decreased at totalEarned=%d: %d -> %d", earned, prev, rank)
		}
		prev = rank
	}
}

func TestProgressToNext(t *testing.T) {
	tests := []struct {
		earned    int64
		wantNext  string
		wantRem   int64
	}{
		{0, "Silver", 500},
		{250, "Silver", 250},
		{500, "Gold", 1000},
		{1499, "Gold", 1},
		{5000, "", 0},
		{99999, "", 0},
	}

	for _, tc := range tests {
		p := ProgressToNext(tc.earned)
		if tc.wantNext == "" {
			if p.NextTier != nil {
				t.Errorf("ProgressToNext(%d): expected no next tier, got %s", tc.earned, p.NextTier.Name)
			}
			if p.ProgressPct != 100 {
				t.Errorf("ProgressToNext(%d): pct = %v, want 100", tc.earned, p.ProgressPct)
			}
			continue
		}
		if p.NextTier == nil || p.NextTier.Name != tc.wantNext {
			t.Errorf("ProgressToNext(%d): next tier = %v, want %s", tc.earned, p.NextTier, tc.wantNext)
		}
		if p.Remaining != tc.wantRem {
			t.Errorf("ProgressToNext(%d): remaining = %d, want %d", tc.earned, p.Remaining, tc.wantRem)
		}
	}
}

func TestProgressToNext_PctBounds(t *testing.T) {
	for earned := int64(-10); earned <= 6000; earned += 13 {
		p := ProgressToNext(earned)
		if p.ProgressPct < 0 || p.ProgressPct > 100 {
			t.Fatalf("ProgressToNext(%d): pct %v out of [0,100]", earned, p.ProgressPct)
		}
	}
}
