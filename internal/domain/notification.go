package domain

import "time"

type NotificationKind string

const (
	NotifyQuotaReached NotificationKind = "quota_reached"
	NotifyWeekReward   NotificationKind = "week_reward"
)

type Notification struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"user_id"`
	Kind      NotificationKind `db:"kind" json:"kind"`
	Body      string           `db:"body" json:"body"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
