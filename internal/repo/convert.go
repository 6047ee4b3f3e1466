package repo

import (
	"fmt"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/entity"
	"github.com/shopspring/decimal"
)

// 价格在数据库中以字符串保存, 只在这里做转换

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed %s %q: %w", ErrRepository, field, s, err)
	}
	return d, nil
}

func toSessionEntity(s domain.Session) entity.Session {
	return entity.Session{
		Id:            s.ID,
		OwnerId:       s.OwnerID,
		Symbol:        s.Symbol,
		BuyThreshold:  s.BuyThreshold.String(),
		SellThreshold: s.SellThreshold.String(),
		Status:        string(s.Status),
		BuyAlertSent:  s.BuyAlertSent,
		SellAlertSent: s.SellAlertSent,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func fromSessionEntity(e entity.Session) (domain.Session, error) {
	buy, err := parseDecimal("buy_threshold", e.BuyThreshold)
	if err != nil {
		return domain.Session{}, err
	}
	sell, err := parseDecimal("sell_threshold", e.SellThreshold)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		ID:            e.Id,
		OwnerID:       e.OwnerId,
		Symbol:        e.Symbol,
		BuyThreshold:  buy,
		SellThreshold: sell,
		Status:        domain.SessionStatus(e.Status),
		BuyAlertSent:  e.BuyAlertSent,
		SellAlertSent: e.SellAlertSent,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}, nil
}

func fromSessionEntities(es []entity.Session) ([]domain.Session, error) {
	res := make([]domain.Session, 0, len(es))
	for _, e := range es {
		s, err := fromSessionEntity(e)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}

func fromPriceSampleEntity(e entity.PriceSample) (domain.PriceSample, error) {
	price, err := parseDecimal("price", e.Price)
	if err != nil {
		return domain.PriceSample{}, err
	}
	return domain.PriceSample{
		SessionID:  e.SessionId,
		Price:      price,
		ObservedAt: e.ObservedAt,
	}, nil
}

func fromAlertRecordEntity(e entity.AlertRecord) (domain.AlertRecord, error) {
	price, err := parseDecimal("price", e.Price)
	if err != nil {
		return domain.AlertRecord{}, err
	}
	threshold, err := parseDecimal("threshold", e.Threshold)
	if err != nil {
		return domain.AlertRecord{}, err
	}
	return domain.AlertRecord{
		ID:        e.Id,
		SessionID: e.SessionId,
		Kind:      domain.AlertKind(e.Kind),
		Price:     price,
		Threshold: threshold,
		SentAt:    e.SentAt,
	}, nil
}

func toAlertRecordEntity(r domain.AlertRecord) entity.AlertRecord {
	return entity.AlertRecord{
		SessionId: r.SessionID,
		Kind:      r.Kind.ToString(),
		Price:     r.Price.String(),
		Threshold: r.Threshold.String(),
		SentAt:    r.SentAt,
	}
}

// flagColumn 根据告警类型选择对应的标记字段
func flagColumn(kind domain.AlertKind) (string, error) {
	switch kind {
	case domain.AlertBuy:
		return "buy_alert_sent", nil
	case domain.AlertSell:
		return "sell_alert_sent", nil
	default:
		return "", fmt.Errorf("%w: unknown alert kind %q", ErrRepository, kind)
	}
}
