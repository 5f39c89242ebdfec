package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"study_webapp/internal/domain"
	"study_webapp/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	// commit accumulated session seconds this often; the final commit
	// happens at close or at the cap
	commitEvery = 30 * time.Second
)

// UsageCommitter is the slice of the meter a content session needs.
type UsageCommitter interface {
	CommitContentSeconds(ctx context.Context, userID, seconds int64) (int64, error)
	DailyUsage(ctx context.Context, userID int64) (int64, error)
}

// Notifier persists the quota notification shown on force-termination.
type Notifier interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// TickMessage streams the session clock to the client once per second.
type TickMessage struct {
	Type             string `json:"type"` // "tick", "limit_reached", "over_limit"
	SessionSeconds   int64  `json:"session_seconds,omitempty"`
	UsedSeconds      int64  `json:"used_seconds"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}

// Session is one live gated-content viewing. The server owns the clock:
// every second it recomputes prior daily usage plus session seconds against
// the tier cap and force-terminates the viewing when the cap is reached.
type Session struct {
	UserID int64
	LinkID string
	Tier   domain.Tier
	Conn   *websocket.Conn
	Meter  UsageCommitter
	Notify Notifier

	// OnForceStop is called after a cap termination, for metrics.
	OnForceStop func()
}

func (s *Session) send(msg TickMessage) error {
	b, _ := json.Marshal(msg)
	_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.Conn.WriteMessage(websocket.TextMessage, b)
}

// Run drives the session until the client disconnects or the daily cap is
// hit. It always commits elapsed seconds before returning; commit failures
// are logged and retried on the next cadence rather than rolled back.
func (s *Session) Run(ctx context.Context) {
	defer s.Conn.Close()

	limit := s.Tier.LimitMinutes * 60

	prior, err := s.Meter.DailyUsage(ctx, s.UserID)
	if err != nil {
		logger.Error("content session: daily usage lookup failed", "user", s.UserID, "error", err)
		return
	}
	if prior >= limit {
		_ = s.send(TickMessage{Type: "over_limit", UsedSeconds: prior, RemainingSeconds: 0})
		return
	}

	// reader: consume pongs and notice the client going away
	done := make(chan struct{})
	_ = s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		return s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := s.Conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var sessionSecs, committedSecs int64
	lastCommit := time.Now()

	commit := func() {
		delta := sessionSecs - committedSecs
		if delta <= 0 {
			return
		}
		if _, err := s.Meter.CommitContentSeconds(ctx, s.UserID, delta); err != nil {
			logger.Error("content session: usage commit failed", "user", s.UserID, "error", err)
			return
		}
		committedSecs = sessionSecs
	}
	defer commit()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	pinger := time.NewTicker(pingPeriod)
	defer pinger.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			// voluntary close; the deferred commit books the tail seconds
			return
		case <-pinger.C:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			sessionSecs++
			totalUsed := prior + sessionSecs

			if time.Since(lastCommit) >= commitEvery {
				commit()
				lastCommit = time.Now()
			}

			if totalUsed >= limit {
				commit()
				s.forceStop(ctx, totalUsed)
				// hold the connection until the client acknowledges or
				// times out, so the notice is seen before the catalog
				select {
				case <-done:
				case <-time.After(5 * time.Second):
				}
				return
			}

			remaining := limit - totalUsed
			if err := s.send(TickMessage{
				Type:             "tick",
				SessionSeconds:   sessionSecs,
				UsedSeconds:      totalUsed,
				RemainingSeconds: remaining,
			}); err != nil {
				return
			}
		}
	}
}

func (s *Session) forceStop(ctx context.Context, totalUsed int64) {
	logger.Info("content session force-terminated at quota cap",
		"user", s.UserID, "link", s.LinkID, "used_seconds", totalUsed)

	n := &domain.Notification{
		UserID: s.UserID,
		Kind:   domain.NotifyQuotaReached,
		Body: fmt.Sprintf("Daily limit reached: your %s tier allows %d minutes of content per day.",
			s.Tier.Name, s.Tier.LimitMinutes),
	}
	if err := s.Notify.Create(ctx, n); err != nil {
		logger.Warn("quota notification failed", "user", s.UserID, "error", err)
	}

	_ = s.send(TickMessage{Type: "limit_reached", UsedSeconds: totalUsed, RemainingSeconds: 0})

	if s.OnForceStop != nil {
		s.OnForceStop()
	}
}
