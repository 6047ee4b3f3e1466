package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/KNICEX/price-watch/pkg/decimalx"
)

var _ WebhookService = (*httpWebhook)(nil)

type httpWebhook struct {
	cli *http.Client
}

func NewWebhookService(cli *http.Client) WebhookService {
	if cli == nil {
		cli = &http.Client{Timeout: 10 * time.Second}
	}
	return &httpWebhook{cli: cli}
}

func (w *httpWebhook) Send(ctx context.Context, url string, data map[string]any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s responded %d", url, resp.StatusCode)
	}
	return nil
}

var _ Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier 以 JSON 形式推送告警
type WebhookNotifier struct {
	svc WebhookService
	url string
}

func NewWebhookNotifier(svc WebhookService, url string) *WebhookNotifier {
	return &WebhookNotifier{svc: svc, url: url}
}

func (n *WebhookNotifier) Send(ctx context.Context, alert Alert) error {
	msg, err := renderMessage(alert, "")
	if err != nil {
		return deliveryFailed("webhook", err)
	}
	err = n.svc.Send(ctx, n.url, map[string]any{
		"session_id": alert.SessionID,
		"owner_id":   alert.OwnerID,
		"kind":       alert.Kind,
		"symbol":     alert.Symbol,
		"price":      decimalx.Money(alert.Price),
		"threshold":  decimalx.Money(alert.Threshold),
		"at":         alert.At.UTC().Format(time.RFC3339),
		"text":       msg.Text,
	})
	if err != nil {
		return deliveryFailed("webhook", err)
	}
	return nil
}
