package monitor

import (
	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/shopspring/decimal"
)

type Crossing int

const (
	CrossingNone Crossing = iota
	CrossingBuy
	CrossingSell
)

func (c Crossing) String() string {
	switch c {
	case CrossingBuy:
		return "buy"
	case CrossingSell:
		return "sell"
	default:
		return "none"
	}
}

// Kind returns the alert kind a crossing triggers; ok is false for CrossingNone.
func (c Crossing) Kind() (kind domain.AlertKind, ok bool) {
	switch c {
	case CrossingBuy:
		return domain.AlertBuy, true
	case CrossingSell:
		return domain.AlertSell, true
	default:
		return "", false
	}
}

func (c Crossing) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Evaluate 判断价格是否穿越了尚未告警的阈值.
// 两个条件同时满足时(买入阈值 >= 卖出阈值), 买入优先, 卖出在下一次检查时处理.
func Evaluate(session domain.Session, price decimal.Decimal) Crossing {
	if !session.AlertSent(domain.AlertBuy) && price.LessThanOrEqual(session.BuyThreshold) {
		return CrossingBuy
	}
	if !session.AlertSent(domain.AlertSell) && price.GreaterThanOrEqual(session.SellThreshold) {
		return CrossingSell
	}
	return CrossingNone
}
