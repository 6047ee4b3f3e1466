package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/repo"
	"github.com/KNICEX/price-watch/internal/repo/repotest"
	"github.com/KNICEX/price-watch/internal/schedule"
	"github.com/KNICEX/price-watch/internal/service/monitor"
	"github.com/KNICEX/price-watch/pkg/decimalx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTicker) Tick(ctx context.Context, sessionID string) (monitor.TickResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sessionID)
	return monitor.TickResult{SessionID: sessionID, Price: decimalx.MustFromString("12.34")}, nil
}

type managerFixture struct {
	ctx       context.Context
	repo      repo.SessionRepo
	ticker    *fakeTicker
	scheduler *schedule.Scheduler
	manager   *Manager
	now       time.Time
}

func newManagerFixture(t *testing.T) *managerFixture {
	f := &managerFixture{
		ctx:       context.Background(),
		repo:      repo.NewSessionRepo(repotest.OpenDB(t)),
		ticker:    &fakeTicker{},
		scheduler: schedule.New(time.Hour),
		now:       time.Date(2024, 5, 10, 13, 0, 0, 0, time.UTC),
	}
	seq := 0
	f.manager = NewManager(f.repo, f.ticker, f.scheduler,
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("s%d", seq)
		}),
	)
	t.Cleanup(f.manager.Shutdown)
	return f
}

func startReq(owner, symbol, buy, sell string) StartReq {
	return StartReq{
		OwnerID:       owner,
		Symbol:        symbol,
		BuyThreshold:  decimalx.MustFromString(buy),
		SellThreshold: decimalx.MustFromString(sell),
	}
}

func TestManager_StartValidation(t *testing.T) {
	f := newManagerFixture(t)

	testCases := []struct {
		name    string
		req     StartReq
		wantErr error
	}{
		{name: "zero buy", req: startReq("u1", "PETR4", "0", "20"), wantErr: ErrInvalidThresholds},
		{name: "negative sell", req: startReq("u1", "PETR4", "10", "-1"), wantErr: ErrInvalidThresholds},
		{name: "empty symbol", req: startReq("u1", "  ", "10", "20"), wantErr: ErrInvalidSymbol},
		{name: "empty owner", req: startReq("", "PETR4", "10", "20"), wantErr: ErrInvalidOwner},
		{name: "zero value thresholds", req: StartReq{OwnerID: "u1", Symbol: "PETR4"}, wantErr: ErrInvalidThresholds},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.manager.Start(f.ctx, tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	sessions, err := f.repo.ListByOwner(f.ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestManager_StartCreatesActiveSession(t *testing.T) {
	f := newManagerFixture(t)

	s, err := f.manager.Start(f.ctx, startReq("u1", "petr4", "10.00", "20.00"))
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "PETR4", s.Symbol)
	assert.Equal(t, domain.StatusActive, s.Status)
	assert.False(t, s.BuyAlertSent)
	assert.False(t, s.SellAlertSent)
	assert.True(t, f.scheduler.Has("s1"))
}

func TestManager_InvertedThresholdsAccepted(t *testing.T) {
	f := newManagerFixture(t)
	s, err := f.manager.Start(f.ctx, startReq("u1", "PETR4", "30", "20"))
	require.NoError(t, err)
	assert.True(t, s.BuyThreshold.GreaterThan(s.SellThreshold))
}

func TestManager_SingleActiveSessionPerOwner(t *testing.T) {
	f := newManagerFixture(t)

	first, err := f.manager.Start(f.ctx, startReq("u1", "PETR4", "10", "20"))
	require.NoError(t, err)
	second, err := f.manager.Start(f.ctx, startReq("u1", "VALE3", "50", "70"))
	require.NoError(t, err)
	other, err := f.manager.Start(f.ctx, startReq("u2", "PETR4", "10", "20"))
	require.NoError(t, err)

	got, err := f.repo.FindByID(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStopped, got.Status)
	assert.False(t, f.scheduler.Has(first.ID))

	active, err := f.manager.Active(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.True(t, f.scheduler.Has(second.ID))
	assert.True(t, f.scheduler.Has(other.ID))
}

func TestManager_StartReactivatesMatchingSession(t *testing.T) {
	f := newManagerFixture(t)

	s, err := f.manager.Start(f.ctx, startReq("u1", "PETR4", "10", "20"))
	require.NoError(t, err)
	require.NoError(t, f.repo.SetAlertFlag(f.ctx, s.ID, domain.AlertBuy, true))
	_, err = f.manager.Pause(f.ctx, s.ID)
	require.NoError(t, err)

	again, err := f.manager.Start(f.ctx, startReq("u1", "PETR4", "9", "21"))
	require.NoError(t, err)
	assert.Equal(t, s.ID, again.ID)
	assert.Equal(t, domain.StatusActive, again.Status)
	assert.False(t, again.BuyAlertSent)
	assert.True(t, again.BuyThreshold.Equal(decimal.NewFromInt(9)))
	assert.True(t, f.scheduler.Has(s.ID))

	sessions, err := f.manager.List(f.ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestManager_PauseIsIdempotent(t *testing.T) {
	f := newManagerFixture(t)
	s, err := f.manager.Start(f.ctx, startReq("u1", "PETR4", "10", "20"))
	require.NoError(t, err)

	paused, err := f.manager.Pause(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStopped, paused.Status)
	assert.False(t, f.scheduler.Has(s.ID))

	again, err := f.manager.Pause(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStopped, again.Status)

	_, err = f.manager.Pause(f.ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestManager_ResetKeepsStatus(t *testing.T) {
	f := newManagerFixture(t)
	s, err := f.manager.Start(f.ctx, startReq("u1", "PETR4", "10", "20"))
	require.NoError(t, err)
	require.NoError(t, f.repo.SetAlertFlag(f.ctx, s.ID, domain.AlertBuy, true))
	require.NoError(t, f.repo.SetAlertFlag(f.ctx, s.ID, domain.AlertSell, true))

	reset, err := f.manager.Reset(f.ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, reset.BuyAlertSent)
	assert.False(t, reset.SellAlertSent)
	assert.Equal(t, domain.StatusActive, reset.Status)

	_, err = f.manager.Pause(f.ctx, s.ID)
	require.NoError(t, err)
	reset, err = f.manager.Reset(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStopped, reset.Status)
}

func TestManager_CheckNow(t *testing.T) {
	f := newManagerFixture(t)
	s, err := f.manager.Start(f.ctx, startReq("u1", "PETR4", "10", "20"))
	require.NoError(t, err)

	res, err := f.manager.CheckNow(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.34", res.Price.String())
	assert.Equal(t, []string{s.ID}, f.ticker.calls)
}

func TestManager_History(t *testing.T) {
	f := newManagerFixture(t)
	s, err := f.manager.Start(f.ctx, startReq("u1", "PETR4", "10", "20"))
	require.NoError(t, err)

	for _, age := range []time.Duration{30 * time.Hour, 3 * time.Hour, time.Hour} {
		require.NoError(t, f.repo.AppendPriceSample(f.ctx, domain.PriceSample{
			SessionID:  s.ID,
			Price:      decimalx.MustFromString("15"),
			ObservedAt: f.now.Add(-age),
		}))
	}
	for i := 0; i < 60; i++ {
		require.NoError(t, f.repo.AppendAlertRecord(f.ctx, domain.AlertRecord{
			SessionID: s.ID,
			Kind:      domain.AlertBuy,
			Price:     decimalx.MustFromString("9"),
			Threshold: decimalx.MustFromString("10"),
			SentAt:    f.now.Add(-time.Duration(i) * time.Minute),
		}))
	}

	prices, err := f.manager.PriceHistory(f.ctx, s.ID, 0)
	require.NoError(t, err)
	assert.Len(t, prices, 2)

	prices, err = f.manager.PriceHistory(f.ctx, s.ID, 2)
	require.NoError(t, err)
	assert.Len(t, prices, 1)

	alerts, err := f.manager.AlertHistory(f.ctx, s.ID, 0)
	require.NoError(t, err)
	assert.Len(t, alerts, DefaultAlertHistoryLimit)

	alerts, err = f.manager.AlertHistory(f.ctx, s.ID, 10)
	require.NoError(t, err)
	assert.Len(t, alerts, 10)

	_, err = f.manager.AlertHistory(f.ctx, "missing", 10)
	assert.True(t, IsNotFound(err))
}

func TestManager_Resume(t *testing.T) {
	f := newManagerFixture(t)
	for _, id := range []string{"a", "b"} {
		require.NoError(t, f.repo.Create(f.ctx, domain.Session{
			ID:            id,
			OwnerID:       "owner-" + id,
			Symbol:        "PETR4",
			BuyThreshold:  decimalx.MustFromString("10"),
			SellThreshold: decimalx.MustFromString("20"),
			Status:        domain.StatusActive,
		}))
	}
	require.NoError(t, f.repo.Create(f.ctx, domain.Session{
		ID:            "c",
		OwnerID:       "owner-c",
		Symbol:        "PETR4",
		BuyThreshold:  decimalx.MustFromString("10"),
		SellThreshold: decimalx.MustFromString("20"),
		Status:        domain.StatusStopped,
	}))

	n, err := f.manager.Resume(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, f.scheduler.Has("a"))
	assert.True(t, f.scheduler.Has("b"))
	assert.False(t, f.scheduler.Has("c"))
}

// gatedRepo 让第一次 FindByID 在读完之后停住, 直到 release 关闭
type gatedRepo struct {
	repo.SessionRepo
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (r *gatedRepo) FindByID(ctx context.Context, id string) (domain.Session, error) {
	s, err := r.SessionRepo.FindByID(ctx, id)
	if r.armed.CompareAndSwap(true, false) {
		close(r.read)
		<-r.release
	}
	return s, err
}

func TestManager_PauseRacingReactivationKeepsScheduleConsistent(t *testing.T) {
	ctx := context.Background()
	gated := &gatedRepo{
		SessionRepo: repo.NewSessionRepo(repotest.OpenDB(t)),
		read:        make(chan struct{}),
		release:     make(chan struct{}),
	}
	scheduler := schedule.New(time.Hour)
	manager := NewManager(gated, &fakeTicker{}, scheduler)
	t.Cleanup(manager.Shutdown)

	s, err := manager.Start(ctx, startReq("u1", "PETR4", "10", "20"))
	require.NoError(t, err)
	_, err = manager.Pause(ctx, s.ID)
	require.NoError(t, err)

	gated.armed.Store(true)
	paused := make(chan error, 1)
	go func() {
		_, err := manager.Pause(ctx, s.ID)
		paused <- err
	}()
	<-gated.read

	// Pause 已读到 stopped, 此时同一会话被重新激活
	restarted, err := manager.Start(ctx, startReq("u1", "PETR4", "11", "21"))
	require.NoError(t, err)
	assert.Equal(t, s.ID, restarted.ID)
	assert.True(t, scheduler.Has(s.ID))

	close(gated.release)
	require.NoError(t, <-paused)

	got, err := manager.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Active(), scheduler.Has(s.ID))
	assert.Equal(t, domain.StatusStopped, got.Status)
	assert.False(t, scheduler.Has(s.ID))
}
