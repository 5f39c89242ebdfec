package service

import (
	"context"
	"sync"
	"time"

	"study_webapp/internal/domain"
	"study_webapp/internal/logger"
)

// UsageStore is the slice of persistence the meter needs: additive,
// store-side counter deltas that tolerate concurrent sessions.
type UsageStore interface {
	AddMinutes(ctx context.Context, userID, minutes int64) error
	AddDailyUsage(ctx context.Context, userID, seconds int64) (int64, error)
	GetDailyUsage(ctx context.Context, userID int64) (int64, error)
}

type trackedSession struct {
	mu       sync.Mutex
	userID   int64
	lastSync time.Time
}

// Meter converts wall-clock elapsed time into committed minute counters.
// Each session keeps a local sync point; Tick commits only whole minutes
// and advances the sync point by exactly the committed amount, so the
// fractional remainder is carried forward rather than lost or counted
// twice.
type Meter struct {
	mu       sync.Mutex
	store    UsageStore
	sessions map[string]*trackedSession
}

func NewMeter(store UsageStore) *Meter {
	return &Meter{
		store:    store,
		sessions: make(map[string]*trackedSession),
	}
}

// Start registers a tracking session. Restarting an existing id moves its
// sync point, discarding any uncommitted fraction.
func (m *Meter) Start(sessionID string, userID int64, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &trackedSession{userID: userID, lastSync: now}
}

// Tick commits whole elapsed minutes since the last sync point. The session
// mutex is held across the read-commit-advance sequence: overlapping
// heartbeats for the same session serialize, so they cannot both commit from
// a stale sync point. On a persistence failure the sync point stays put: the
// elapsed time already happened, and the next tick retries the commit.
// Across a failed-then-retried commit minutes can be counted twice; that
// risk is accepted.
func (m *Meter) Tick(ctx context.Context, sessionID string, now time.Time) (int64, error) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return 0, domain.ErrNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	whole := int64(now.Sub(sess.lastSync) / time.Minute)
	if whole < 1 {
		return 0, nil
	}

	if err := m.store.AddMinutes(ctx, sess.userID, whole); err != nil {
		logger.Error("usage commit failed", "session", sessionID, "user", sess.userID, "error", err)
		return 0, err
	}

	sess.lastSync = sess.lastSync.Add(time.Duration(whole) * time.Minute)
	return whole, nil
}

// Flush commits outstanding whole minutes and forgets the session. Called
// on navigation away and on process teardown. When the commit fails the
// session stays registered so the next heartbeat can retry instead of
// dropping the minutes.
func (m *Meter) Flush(ctx context.Context, sessionID string, now time.Time) (int64, error) {
	committed, err := m.Tick(ctx, sessionID, now)
	if err != nil && err != domain.ErrNotFound {
		return committed, err
	}

	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	return committed, nil
}

// FlushAll commits every live session, for graceful shutdown.
func (m *Meter) FlushAll(ctx context.Context, now time.Time) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if _, err := m.Flush(ctx, id, now); err != nil {
			logger.Warn("flush on shutdown failed", "session", id, "error", err)
		}
	}
}

// CommitContentSeconds adds gated-content seconds to today's quota counter
// and returns the new daily total.
func (m *Meter) CommitContentSeconds(ctx context.Context, userID, seconds int64) (int64, error) {
	if seconds <= 0 {
		return m.store.GetDailyUsage(ctx, userID)
	}
	return m.store.AddDailyUsage(ctx, userID, seconds)
}

// DailyUsage returns today's consumed seconds.
func (m *Meter) DailyUsage(ctx context.Context, userID int64) (int64, error) {
	return m.store.GetDailyUsage(ctx, userID)
}

// QuotaStatus reports whether the daily allowance for the tier is spent.
// The boundary is exact: usage equal to the cap is over the limit.
type QuotaStatus struct {
	OverLimit        bool  `json:"over_limit"`
	RemainingSeconds int64 `json:"remaining_seconds"`
	LimitSeconds     int64 `json:"limit_seconds"`
	UsedSeconds      int64 `json:"used_seconds"`
}

func QuotaFor(tier domain.Tier, dailyUsageSeconds int64) QuotaStatus {
	limit := tier.LimitMinutes * 60
	remaining := limit - dailyUsageSeconds
	if remaining < 0 {
		remaining = 0
	}
	return QuotaStatus{
		OverLimit:        dailyUsageSeconds >= limit,
		RemainingSeconds: remaining,
		LimitSeconds:     limit,
		UsedSeconds:      dailyUsageSeconds,
	}
}
