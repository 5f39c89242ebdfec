package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"study_webapp/internal/domain"

	"github.com/gorilla/websocket"
)

type fakeMeter struct {
	mu        sync.Mutex
	prior     int64
	committed int64
}

func (m *fakeMeter) CommitContentSeconds(_ context.Context, _ int64, seconds int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed += seconds
	return m.prior + m.committed, nil
}

func (m *fakeMeter) DailyUsage(_ context.Context, _ int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prior, nil
}

func (m *fakeMeter) total() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []*domain.Notification
}

func (n *fakeNotifier) Create(_ context.Context, note *domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notes)
}

// serveSession upgrades one connection and runs a session against the fakes.
func serveSession(t *testing.T, tier domain.Tier, meter *fakeMeter, notify *fakeNotifier) *websocket.Conn {
	t.Helper()
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		s := &Session{
			UserID: 1,
			LinkID: "link-1",
			Tier:   tier,
			Conn:   conn,
			Meter:  meter,
			Notify: notify,
		}
		s.Run(context.Background())
	}))
	t.Cleanup(ts.Close)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) TickMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg TickMessage
	if err := json.Unmarshal(b, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", b, err)
	}
	return msg
}

func TestSession_OverLimitRejectsImmediately(t *testing.T) {
	tier := domain.Tiers[0] // 60 min
	meter := &fakeMeter{prior: tier.LimitMinutes * 60}
	notify := &fakeNotifier{}

	conn := serveSession(t, tier, meter, notify)

	msg := readMessage(t, conn)
	if msg.Type != "over_limit" {
		t.Fatalf("first message type = %q, want over_limit", msg.Type)
	}
	if msg.RemainingSeconds != 0 {
		t.Fatalf("remaining = %d, want 0", msg.RemainingSeconds)
	}

	// no seconds were viewed, nothing should be committed
	if got := meter.total(); got != 0 {
		t.Fatalf("committed %d seconds for a rejected session", got)
	}
}

func TestSession_TicksThenForceStopsAtCap(t *testing.T) {
	tier := domain.Tiers[0]
	limit := tier.LimitMinutes * 60
	meter := &fakeMeter{prior: limit - 2} // two seconds of headroom
	notify := &fakeNotifier{}

	conn := serveSession(t, tier, meter, notify)

	first := readMessage(t, conn)
	if first.Type != "tick" {
		t.Fatalf("first message type = %q, want tick", first.Type)
	}
	if first.RemainingSeconds != 1 {
		t.Fatalf("remaining after first tick = %d, want 1", first.RemainingSeconds)
	}

	second := readMessage(t, conn)
	if second.Type != "limit_reached" {
		t.Fatalf("second message type = %q, want limit_reached", second.Type)
	}
	if second.UsedSeconds != limit {
		t.Fatalf("used at cap = %d, want %d", second.UsedSeconds, limit)
	}

	// acknowledge so the server releases the connection promptly
	conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for meter.total() != 2 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if got := meter.total(); got != 2 {
		t.Fatalf("committed %d seconds, want 2", got)
	}
	if notify.count() != 1 {
		t.Fatalf("quota notifications = %d, want 1", notify.count())
	}
}
