package web

import (
	"time"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/service/monitor"
	"github.com/shopspring/decimal"
)

type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type StartSessionReq struct {
	Symbol        string `json:"symbol"`
	BuyThreshold  string `json:"buy_threshold"`
	SellThreshold string `json:"sell_threshold"`
}

type SaveContactReq struct {
	Email        string `json:"email"`
	SmtpHost     string `json:"smtp_host"`
	SmtpPort     int    `json:"smtp_port"`
	SmtpUsername string `json:"smtp_username"`
	SmtpPassword string `json:"smtp_password"`
}

type SessionVO struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	BuyThreshold  decimal.Decimal `json:"buy_threshold"`
	SellThreshold decimal.Decimal `json:"sell_threshold"`
	Status        string          `json:"status"`
	BuyAlertSent  bool            `json:"buy_alert_sent"`
	SellAlertSent bool            `json:"sell_alert_sent"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toSessionVO(s domain.Session) SessionVO {
	return SessionVO{
		ID:            s.ID,
		Symbol:        s.Symbol,
		BuyThreshold:  s.BuyThreshold,
		SellThreshold: s.SellThreshold,
		Status:        string(s.Status),
		BuyAlertSent:  s.BuyAlertSent,
		SellAlertSent: s.SellAlertSent,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

type AlertVO struct {
	Kind      string          `json:"kind"`
	Price     decimal.Decimal `json:"price"`
	Threshold decimal.Decimal `json:"threshold"`
	SentAt    time.Time       `json:"sent_at"`
}

type PriceVO struct {
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observed_at"`
}

type CheckVO struct {
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observed_at"`
	Crossing   string          `json:"crossing"`
	Notified   bool            `json:"notified"`
	Skipped    bool            `json:"skipped"`
	Reason     string          `json:"reason,omitempty"`
}

func toCheckVO(r monitor.TickResult) CheckVO {
	return CheckVO{
		Price:      r.Price,
		ObservedAt: r.ObservedAt,
		Crossing:   r.Crossing.String(),
		Notified:   r.Notified,
		Skipped:    r.Skipped,
		Reason:     r.Reason,
	}
}
