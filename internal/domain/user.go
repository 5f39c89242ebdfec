package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	Credits      int64     `db:"credits" json:"credits"`
	TotalEarned  int64     `db:"total_earned" json:"total_earned"`
	TotalMinutes int64     `db:"total_minutes" json:"total_minutes"`
	WeekMinutes  int64     `db:"week_minutes" json:"week_minutes"`
	DailyUsage   int64     `db:"daily_usage_secs" json:"daily_usage_secs"` // seconds of gated content today
	UsageDay     time.Time `db:"usage_day" json:"-"`
	ReferralCode string    `db:"referral_code" json:"referral_code"`
	ReferredBy   *int64    `db:"referred_by" json:"referred_by,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
