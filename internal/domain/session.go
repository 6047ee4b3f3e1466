package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	StatusActive  SessionStatus = "active"
	StatusStopped SessionStatus = "stopped"
)

// AlertKind 告警类型
type AlertKind string

const (
	AlertBuy  AlertKind = "buy"
	AlertSell AlertKind = "sell"
)

func (k AlertKind) Valid() bool {
	return k == AlertBuy || k == AlertSell
}

func (k AlertKind) ToString() string {
	return string(k)
}

// Session 一个用户针对单个标的的价格监控
type Session struct {
	ID            string
	OwnerID       string
	Symbol        string
	BuyThreshold  decimal.Decimal
	SellThreshold decimal.Decimal
	Status        SessionStatus
	BuyAlertSent  bool
	SellAlertSent bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (s Session) Active() bool {
	return s.Status == StatusActive
}

// AlertSent reports whether the alert of the given kind was already dispatched since the last reset.
func (s Session) AlertSent(kind AlertKind) bool {
	switch kind {
	case AlertBuy:
		return s.BuyAlertSent
	case AlertSell:
		return s.SellAlertSent
	default:
		return false
	}
}

func (s Session) Threshold(kind AlertKind) decimal.Decimal {
	switch kind {
	case AlertBuy:
		return s.BuyThreshold
	case AlertSell:
		return s.SellThreshold
	default:
		return decimal.Zero
	}
}

type PriceSample struct {
	SessionID  string
	Price      decimal.Decimal
	ObservedAt time.Time
}

type AlertRecord struct {
	ID        int64
	SessionID string
	Kind      AlertKind
	Price     decimal.Decimal
	Threshold decimal.Decimal
	SentAt    time.Time
}
