package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/repo"
	"github.com/KNICEX/price-watch/internal/service/notification"
	"github.com/KNICEX/price-watch/internal/service/quote"
	"github.com/KNICEX/price-watch/pkg/keylock"
	"github.com/shopspring/decimal"
)

const (
	DefaultQuoteTimeout  = 10 * time.Second
	DefaultNotifyTimeout = 15 * time.Second
)

var _ Ticker = (*Engine)(nil)

// Engine 执行 获取价格 -> 判断穿越 -> 发送通知 的检查流程.
// 同一个会话的 Tick 串行执行, 不同会话可以并发.
type Engine struct {
	repo     repo.SessionRepo
	quotes   quote.Source
	notifier notification.Notifier
	metrics  Metrics
	now      func() time.Time

	quoteTimeout  time.Duration
	notifyTimeout time.Duration

	locks *keylock.Locker
}

type Option func(e *Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithQuoteTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.quoteTimeout = d
		}
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.notifyTimeout = d
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(sessionRepo repo.SessionRepo, quotes quote.Source, notifier notification.Notifier, opts ...Option) *Engine {
	e := &Engine{
		repo:          sessionRepo,
		quotes:        quotes,
		notifier:      notifier,
		metrics:       noopMetrics{},
		now:           time.Now,
		quoteTimeout:  DefaultQuoteTimeout,
		notifyTimeout: DefaultNotifyTimeout,
		locks:         keylock.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) lock(sessionID string) func() {
	return e.locks.Lock(sessionID)
}

// Tick runs one check for the session. Quote and delivery failures are absorbed
// and reported through the result; only repository failures are returned.
func (e *Engine) Tick(ctx context.Context, sessionID string) (TickResult, error) {
	unlock := e.lock(sessionID)
	defer unlock()

	res := TickResult{SessionID: sessionID}

	session, err := e.repo.FindByID(ctx, sessionID)
	if err != nil {
		e.metrics.TickDone(OutcomeError)
		return res, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	res.Symbol = session.Symbol

	// 已暂停的会话不做任何修改
	if !session.Active() {
		res.Skipped = true
		res.Reason = OutcomeInactive
		e.metrics.TickDone(OutcomeInactive)
		return res, nil
	}

	price, err := e.fetchPrice(ctx, session.Symbol)
	if err != nil {
		slog.Warn("skip tick, quote unavailable", "session", sessionID, "symbol", session.Symbol, "error", err)
		res.Skipped = true
		res.Reason = OutcomeQuoteError
		e.metrics.TickDone(OutcomeQuoteError)
		return res, nil
	}
	res.Price = price
	res.ObservedAt = e.now().UTC()

	err = e.repo.AppendPriceSample(ctx, domain.PriceSample{
		SessionID:  sessionID,
		Price:      price,
		ObservedAt: res.ObservedAt,
	})
	if err != nil {
		e.metrics.TickDone(OutcomeError)
		return res, fmt.Errorf("append price sample of %s: %w", sessionID, err)
	}

	res.Crossing = Evaluate(session, price)
	kind, ok := res.Crossing.Kind()
	if !ok {
		e.metrics.TickDone(OutcomeNoCrossing)
		return res, nil
	}

	threshold := session.Threshold(kind)
	if err := e.notify(ctx, session, kind, price, threshold); err != nil {
		// 标记保持 false, 下一次检查会重新发送
		slog.Warn("alert delivery failed, will retry next tick",
			"session", sessionID, "kind", kind, "price", price, "error", err)
		e.metrics.DeliveryFailed(kind)
		e.metrics.TickDone(OutcomeDelivery)
		return res, nil
	}

	err = e.repo.RecordAlert(ctx, domain.AlertRecord{
		SessionID: sessionID,
		Kind:      kind,
		Price:     price,
		Threshold: threshold,
		SentAt:    e.now().UTC(),
	})
	if errors.Is(err, repo.ErrAlertAlreadyRecorded) {
		slog.Warn("alert flag already set, record skipped", "session", sessionID, "kind", kind)
		e.metrics.TickDone(OutcomeNotified)
		return res, nil
	}
	if err != nil {
		e.metrics.TickDone(OutcomeError)
		return res, fmt.Errorf("record %s alert of %s: %w", kind, sessionID, err)
	}

	res.Notified = true
	e.metrics.AlertSent(kind)
	e.metrics.TickDone(OutcomeNotified)
	slog.Info("threshold crossed, alert sent",
		"session", sessionID, "symbol", session.Symbol, "kind", kind, "price", price, "threshold", threshold)
	return res, nil
}

func (e *Engine) fetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, e.quoteTimeout)
	defer cancel()

	start := time.Now()
	price, err := e.quotes.GetPrice(ctx, symbol)
	e.metrics.ObserveQuote(symbol, time.Since(start), err)
	if err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

func (e *Engine) notify(ctx context.Context, session domain.Session, kind domain.AlertKind, price, threshold decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(ctx, e.notifyTimeout)
	defer cancel()

	return e.notifier.Send(ctx, notification.Alert{
		Kind:      kind,
		SessionID: session.ID,
		OwnerID:   session.OwnerID,
		Symbol:    session.Symbol,
		Price:     price,
		Threshold: threshold,
		At:        e.now(),
	})
}
