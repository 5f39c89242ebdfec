package domain

import "time"

// StudyTask is a timed task that pays out credits on completion.
type StudyTask struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	Title           string    `db:"title" json:"title"`
	DurationMinutes int64     `db:"duration_minutes" json:"duration_minutes"`
	RewardCredits   int64     `db:"reward_credits" json:"reward_credits"`
	Completed       bool      `db:"completed" json:"completed"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
