package horizon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dialysis-scheduler/config"
	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/booking"
	"dialysis-scheduler/internal/clock"
	"dialysis-scheduler/internal/db/dbtest"
	"dialysis-scheduler/internal/store"
)

type fakeInitializer struct {
	mu       sync.Mutex
	existing map[string]bool
	calls    []string
	failOn   string
}

func (f *fakeInitializer) InitializeSlots(ctx context.Context, date string) (*booking.InitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, date)
	if date == f.failOn {
		return nil, apperr.ErrInsufficientCapacity
	}
	if f.existing[date] {
		return nil, apperr.ErrAlreadyInitialized
	}
	f.existing[date] = true
	return &booking.InitResult{Created: true, Count: 30}, nil
}

type fakeClock struct {
	today string
	wait  time.Duration
}

func (c fakeClock) Today() string                    { return c.today }
func (c fakeClock) UntilNextMidnight() time.Duration { return c.wait }

func TestRunner_BackfillSkipsExisting(t *testing.T) {
	fi := &fakeInitializer{existing: map[string]bool{"2025-03-11": true}}
	cfg := config.HorizonConfig{Enabled: true, LookaheadDays: 5, BackfillDays: 5}
	r := NewRunner(cfg, fi, fakeClock{today: "2025-03-10"}, zap.NewNop())

	created := r.Backfill(context.Background())

	assert.Equal(t, []string{"2025-03-10", "2025-03-12", "2025-03-13", "2025-03-14", "2025-03-15"}, created)
	assert.Len(t, fi.calls, 6)
}

func TestRunner_BackfillContinuesPastFailures(t *testing.T) {
	fi := &fakeInitializer{existing: map[string]bool{}, failOn: "2025-03-12"}
	cfg := config.HorizonConfig{Enabled: true, LookaheadDays: 5, BackfillDays: 3}
	r := NewRunner(cfg, fi, fakeClock{today: "2025-03-10"}, zap.NewNop())

	created := r.Backfill(context.Background())

	assert.Equal(t, []string{"2025-03-10", "2025-03-11", "2025-03-13"}, created)
}

func TestRunner_Rollover(t *testing.T) {
	fi := &fakeInitializer{existing: map[string]bool{}}
	cfg := config.HorizonConfig{Enabled: true, LookaheadDays: 5, BackfillDays: 5}
	r := NewRunner(cfg, fi, fakeClock{today: "2025-03-30"}, zap.NewNop())

	assert.True(t, r.Rollover(context.Background()))
	assert.Equal(t, []string{"2025-04-04"}, fi.calls)
	assert.False(t, r.Rollover(context.Background()), "second rollover on the same day is a no-op")
}

func TestRunner_RunFiresAtMidnight(t *testing.T) {
	fi := &fakeInitializer{existing: map[string]bool{}}
	cfg := config.HorizonConfig{Enabled: true, LookaheadDays: 7, BackfillDays: 0}
	r := NewRunner(cfg, fi, fakeClock{today: "2025-03-10", wait: 10 * time.Millisecond}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		fi.mu.Lock()
		defer fi.mu.Unlock()
		return fi.existing["2025-03-17"]
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}

func TestRunner_Disabled(t *testing.T) {
	fi := &fakeInitializer{existing: map[string]bool{}}
	r := NewRunner(config.HorizonConfig{Enabled: false}, fi, fakeClock{today: "2025-03-10"}, zap.NewNop())

	r.Run(context.Background())
	assert.Empty(t, fi.calls)
}

func TestRunner_BackfillAgainstDatabase(t *testing.T) {
	gormDB := dbtest.Open(t)
	dbtest.SeedMachines(t, gormDB, 15)
	s := store.NewGormStore(gormDB)

	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	clk := clock.NewFixed(loc, time.Date(2025, 3, 10, 23, 30, 0, 0, loc))

	initializer := booking.NewInitializer(s, 15, zap.NewNop())
	cfg := config.HorizonConfig{Enabled: true, LookaheadDays: 5, BackfillDays: 2}
	r := NewRunner(cfg, initializer, clk, zap.NewNop())

	ctx := context.Background()
	assert.Len(t, r.Backfill(ctx), 3)
	assert.Empty(t, r.Backfill(ctx), "restart does not duplicate")

	for _, date := range []string{"2025-03-10", "2025-03-11", "2025-03-12"} {
		ok, err := s.HasSlots(ctx, date)
		require.NoError(t, err)
		assert.True(t, ok, date)
	}
	assert.Equal(t, 30*time.Minute, clk.UntilNextMidnight())
}
