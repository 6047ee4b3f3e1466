package session

import (
	"errors"

	"github.com/KNICEX/price-watch/internal/schedule"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidThresholds = errors.New("invalid thresholds: both must be positive")
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrInvalidOwner      = errors.New("invalid owner")
)

const (
	DefaultAlertHistoryLimit = 50
	MaxAlertHistoryLimit     = 500
	DefaultPriceHistoryHours = 24
)

type StartReq struct {
	OwnerID       string
	Symbol        string
	BuyThreshold  decimal.Decimal
	SellThreshold decimal.Decimal
}

// Scheduler 会话定时检查的调度器
type Scheduler interface {
	Add(key string, task schedule.Task)
	Remove(key string) bool
	Has(key string) bool
	Stop()
}
