package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/repo"
	"github.com/KNICEX/price-watch/internal/service/monitor"
	"github.com/KNICEX/price-watch/pkg/keylock"
	"github.com/google/uuid"
)

// Manager 负责会话的状态机: start / pause / reset, 以及会话定时任务的启停.
// 它是 status 字段和标记重置的唯一写入方.
type Manager struct {
	repo      repo.SessionRepo
	ticker    monitor.Ticker
	scheduler Scheduler
	now       func() time.Time
	newID     func() string

	ownerLocks *keylock.Locker
}

type Option func(m *Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) {
		m.newID = newID
	}
}

func NewManager(sessionRepo repo.SessionRepo, ticker monitor.Ticker, scheduler Scheduler, opts ...Option) *Manager {
	m := &Manager{
		repo:      sessionRepo,
		ticker:    ticker,
		scheduler: scheduler,
		now:       time.Now,
		newID:     uuid.NewString,

		ownerLocks: keylock.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) lockOwner(ownerID string) func() {
	return m.ownerLocks.Lock(ownerID)
}

func (m *Manager) schedule(id string) {
	m.scheduler.Add(id, monitor.NewSessionTickTask(m.ticker, id))
}

// Start activates monitoring of req.Symbol for the owner. An existing session of the
// owner for the same symbol is reactivated with the new thresholds and cleared flags;
// any other active session of the owner is stopped first.
func (m *Manager) Start(ctx context.Context, req StartReq) (domain.Session, error) {
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		return domain.Session{}, ErrInvalidOwner
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return domain.Session{}, ErrInvalidSymbol
	}
	if !req.BuyThreshold.IsPositive() || !req.SellThreshold.IsPositive() {
		return domain.Session{}, ErrInvalidThresholds
	}

	unlock := m.lockOwner(ownerID)
	defer unlock()

	existing, err := m.repo.FindByOwnerAndSymbol(ctx, ownerID, symbol)
	found := err == nil
	if err != nil && !IsNotFound(err) {
		return domain.Session{}, err
	}

	sessions, err := m.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return domain.Session{}, err
	}
	for _, s := range sessions {
		if s.Active() && (!found || s.ID != existing.ID) {
			if err := m.stop(ctx, s.ID); err != nil {
				return domain.Session{}, err
			}
		}
	}

	var id string
	if found {
		id = existing.ID
		if err := m.repo.Reactivate(ctx, id, req.BuyThreshold, req.SellThreshold); err != nil {
			return domain.Session{}, err
		}
		slog.Info("session reactivated", "session", id, "owner", ownerID, "symbol", symbol)
	} else {
		id = m.newID()
		now := m.now().UTC()
		err = m.repo.Create(ctx, domain.Session{
			ID:            id,
			OwnerID:       ownerID,
			Symbol:        symbol,
			BuyThreshold:  req.BuyThreshold,
			SellThreshold: req.SellThreshold,
			Status:        domain.StatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return domain.Session{}, err
		}
		slog.Info("session created", "session", id, "owner", ownerID, "symbol", symbol)
	}

	m.schedule(id)
	return m.repo.FindByID(ctx, id)
}

func (m *Manager) stop(ctx context.Context, id string) error {
	if err := m.repo.UpdateStatus(ctx, id, domain.StatusStopped); err != nil {
		return fmt.Errorf("stop session %s: %w", id, err)
	}
	m.scheduler.Remove(id)
	return nil
}

// Pause stops scheduling the session. Pausing a stopped session is a no-op.
// A tick already running is allowed to finish.
func (m *Manager) Pause(ctx context.Context, id string) (domain.Session, error) {
	s, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}

	unlock := m.lockOwner(s.OwnerID)
	defer unlock()

	// 加锁前读到的状态可能已被并发的 Start 改变
	s, err = m.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	if !s.Active() {
		m.scheduler.Remove(id)
		return s, nil
	}
	if err := m.stop(ctx, id); err != nil {
		return domain.Session{}, err
	}
	slog.Info("session paused", "session", id, "owner", s.OwnerID)
	return m.repo.FindByID(ctx, id)
}

// Reset clears both alert flags without touching the status.
func (m *Manager) Reset(ctx context.Context, id string) (domain.Session, error) {
	if err := m.repo.ResetFlags(ctx, id); err != nil {
		return domain.Session{}, err
	}
	slog.Info("session alerts reset", "session", id)
	return m.repo.FindByID(ctx, id)
}

func (m *Manager) Get(ctx context.Context, id string) (domain.Session, error) {
	return m.repo.FindByID(ctx, id)
}

func (m *Manager) Active(ctx context.Context, ownerID string) (domain.Session, error) {
	return m.repo.FindActiveByOwner(ctx, ownerID)
}

func (m *Manager) List(ctx context.Context, ownerID string) ([]domain.Session, error) {
	return m.repo.ListByOwner(ctx, ownerID)
}

// CheckNow runs a tick right away, outside the schedule.
func (m *Manager) CheckNow(ctx context.Context, id string) (monitor.TickResult, error) {
	return m.ticker.Tick(ctx, id)
}

func (m *Manager) AlertHistory(ctx context.Context, id string, limit int) ([]domain.AlertRecord, error) {
	if _, err := m.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultAlertHistoryLimit
	}
	limit = min(limit, MaxAlertHistoryLimit)
	return m.repo.ListAlertHistory(ctx, id, limit)
}

func (m *Manager) PriceHistory(ctx context.Context, id string, sinceHours int) ([]domain.PriceSample, error) {
	if _, err := m.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if sinceHours <= 0 {
		sinceHours = DefaultPriceHistoryHours
	}
	since := m.now().Add(-time.Duration(sinceHours) * time.Hour)
	return m.repo.ListPriceHistory(ctx, id, since)
}

// Resume schedules every session persisted as active, used at process start.
func (m *Manager) Resume(ctx context.Context) (int, error) {
	sessions, err := m.repo.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	for _, s := range sessions {
		m.schedule(s.ID)
	}
	slog.Info("active sessions resumed", "count", len(sessions))
	return len(sessions), nil
}

func (m *Manager) Shutdown() {
	m.scheduler.Stop()
}

// IsNotFound reports whether err means the session does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repo.ErrSessionNotFound)
}
