package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"study_webapp/internal/domain"
)

type fakeUsageStore struct {
	mu      sync.Mutex
	minutes map[int64]int64
	daily   map[int64]int64
	failN   int           // fail the next N AddMinutes calls
	delay   time.Duration // sleep before each AddMinutes write
}

func newFakeUsageStore() *fakeUsageStore {
	return &fakeUsageStore{minutes: make(map[int64]int64), daily: make(map[int64]int64)}
}

func (s *fakeUsageStore) AddMinutes(_ context.Context, userID, minutes int64) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failN > 0 {
		s.failN--
		return errors.New("store unavailable")
	}
	s.minutes[userID] += minutes
	return nil
}

func (s *fakeUsageStore) AddDailyUsage(_ context.Context, userID, seconds int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daily[userID] += seconds
	return s.daily[userID], nil
}

func (s *fakeUsageStore) GetDailyUsage(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.daily[userID], nil
}

func (s *fakeUsageStore) committedMinutes(userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minutes[userID]
}

func TestMeterTick_CommitsWholeMinutesOnly(t *testing.T) {
	store := newFakeUsageStore()
	m := NewMeter(store)
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	m.Start("s1", 7, start)

	// 59s elapsed: nothing to commit
	committed, err := m.Tick(context.Background(), "s1", start.Add(59*time.Second))
	if err != nil || committed != 0 {
		t.Fatalf("tick at 59s: committed=%d err=%v, want 0,nil", committed, err)
	}

	// 2m30s elapsed: two whole minutes, 30s carried
	committed, err = m.Tick(context.Background(), "s1", start.Add(2*time.Minute+30*time.Second))
	if err != nil || committed != 2 {
		t.Fatalf("tick at 2m30s: committed=%d err=%v, want 2,nil", committed, err)
	}
	if store.minutes[7] != 2 {
		t.Fatalf("store minutes = %d, want 2", store.minutes[7])
	}

	// 40s later the carried 30s tips over one more minute
	committed, err = m.Tick(context.Background(), "s1", start.Add(3*time.Minute+10*time.Second))
	if err != nil || committed != 1 {
		t.Fatalf("tick at 3m10s: committed=%d err=%v, want 1,nil", committed, err)
	}
	if store.minutes[7] != 3 {
		t.Fatalf("store minutes = %d, want 3", store.minutes[7])
	}
}

func TestMeterTick_RetriesAfterStoreFailure(t *testing.T) {
	store := newFakeUsageStore()
	store.failN = 1
	m := NewMeter(store)
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	m.Start("s1", 7, start)

	if _, err := m.Tick(context.Background(), "s1", start.Add(time.Minute)); err == nil {
		t.Fatal("expected error from failing store")
	}
	if store.minutes[7] != 0 {
		t.Fatalf("store minutes = %d after failed commit, want 0", store.minutes[7])
	}

	// sync point did not advance, so the retry recommits the same minute
	committed, err := m.Tick(context.Background(), "s1", start.Add(time.Minute+time.Second))
	if err != nil || committed != 1 {
		t.Fatalf("retry tick: committed=%d err=%v, want 1,nil", committed, err)
	}
	if store.minutes[7] != 1 {
		t.Fatalf("store minutes = %d, want 1", store.minutes[7])
	}
}

func TestMeterTick_OverlappingTicksCommitOnce(t *testing.T) {
	store := newFakeUsageStore()
	store.delay = 50 * time.Millisecond // widen the commit window so ticks overlap
	m := NewMeter(store)
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	m.Start("s1", 7, start)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var total int64
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			committed, err := m.Tick(context.Background(), "s1", start.Add(time.Minute))
			if err != nil {
				t.Errorf("tick: %v", err)
				return
			}
			mu.Lock()
			total += committed
			mu.Unlock()
		}()
	}
	wg.Wait()

	if total != 1 {
		t.Fatalf("overlapping ticks committed %d minutes, want 1", total)
	}
	if got := store.committedMinutes(7); got != 1 {
		t.Fatalf("store minutes = %d, want 1", got)
	}
}

func TestMeterFlush_RemovesSession(t *testing.T) {
	store := newFakeUsageStore()
	m := NewMeter(store)
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	m.Start("s1", 7, start)

	committed, err := m.Flush(context.Background(), "s1", start.Add(90*time.Second))
	if err != nil || committed != 1 {
		t.Fatalf("flush: committed=%d err=%v, want 1,nil", committed, err)
	}

	if _, err := m.Tick(context.Background(), "s1", start.Add(5*time.Minute)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("tick after flush: err=%v, want ErrNotFound", err)
	}
}

func TestMeterFlush_KeepsSessionOnStoreFailure(t *testing.T) {
	store := newFakeUsageStore()
	store.failN = 1
	m := NewMeter(store)
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	m.Start("s1", 7, start)

	if _, err := m.Flush(context.Background(), "s1", start.Add(time.Minute)); err == nil {
		t.Fatal("expected error from failing store")
	}

	// the session survived the failed flush; the next heartbeat commits
	committed, err := m.Tick(context.Background(), "s1", start.Add(time.Minute))
	if err != nil || committed != 1 {
		t.Fatalf("retry tick: committed=%d err=%v, want 1,nil", committed, err)
	}
	if got := store.committedMinutes(7); got != 1 {
		t.Fatalf("store minutes = %d, want 1", got)
	}
}

func TestQuotaFor_BoundaryExact(t *testing.T) {
	tier := domain.Tier{Name: "Basic", LimitMinutes: 60}

	tests := []struct {
		used          int64
		wantOver      bool
		wantRemaining int64
	}{
		{0, false, 3600},
		{3599, false, 1},
		{3600, true, 0},
		{5000, true, 0},
	}

	for _, tc := range tests {
		q := QuotaFor(tier, tc.used)
		if q.OverLimit != tc.wantOver {
			t.Errorf("QuotaFor(used=%d): overLimit=%v, want %v", tc.used, q.OverLimit, tc.wantOver)
		}
		if q.RemainingSeconds != tc.wantRemaining {
			t.Errorf("QuotaFor(used=%d): remaining=%d, want %d", tc.used, q.RemainingSeconds, tc.wantRemaining)
		}
	}
}
