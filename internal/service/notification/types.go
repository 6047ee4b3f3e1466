package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrDeliveryFailed = errors.New("delivery failed")

// Alert 一次阈值穿越需要发送的内容
type Alert struct {
	Kind      domain.AlertKind
	SessionID string
	OwnerID   string
	Symbol    string
	Price     decimal.Decimal
	Threshold decimal.Decimal
	At        time.Time
}

// Notifier delivers an alert on a best-effort basis.
// Any failure is reported wrapped in ErrDeliveryFailed.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

type EmailService interface {
	SendText(ctx context.Context, to, subject, body string) error
	SendHTML(ctx context.Context, to, subject, body string) error
}

type WebhookService interface {
	Send(ctx context.Context, url string, data map[string]any) error
}

func deliveryFailed(channel string, err error) error {
	if errors.Is(err, ErrDeliveryFailed) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrDeliveryFailed, channel, err)
}
