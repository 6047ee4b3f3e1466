package monitor

import (
	"context"
	"time"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/shopspring/decimal"
)

// TickResult 一次检查的结果
type TickResult struct {
	SessionID  string
	Symbol     string
	Price      decimal.Decimal
	ObservedAt time.Time
	Crossing   Crossing
	Notified   bool
	Skipped    bool
	Reason     string
}

// Ticker runs one poll-evaluate-notify cycle for a session.
type Ticker interface {
	Tick(ctx context.Context, sessionID string) (TickResult, error)
}

const (
	OutcomeInactive   = "inactive"
	OutcomeQuoteError = "quote_unavailable"
	OutcomeNoCrossing = "no_crossing"
	OutcomeNotified   = "notified"
	OutcomeDelivery   = "delivery_failed"
	OutcomeError      = "error"
)

type Metrics interface {
	ObserveQuote(symbol string, elapsed time.Duration, err error)
	TickDone(outcome string)
	AlertSent(kind domain.AlertKind)
	DeliveryFailed(kind domain.AlertKind)
}

type noopMetrics struct{}

func (noopMetrics) ObserveQuote(symbol string, elapsed time.Duration, err error) {}
func (noopMetrics) TickDone(outcome string) {}
func (noopMetrics) AlertSent(kind domain.AlertKind) {}
func (noopMetrics) DeliveryFailed(kind domain.AlertKind) {}
