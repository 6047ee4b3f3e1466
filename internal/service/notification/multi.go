package notification

import (
	"context"
	"errors"
	"log/slog"
)

var _ Notifier = (MultiNotifier)(nil)

// MultiNotifier 依次尝试所有渠道, 只要有一个成功就算送达
type MultiNotifier []Notifier

func (m MultiNotifier) Send(ctx context.Context, alert Alert) error {
	if len(m) == 0 {
		return deliveryFailed("multi", errors.New("no notification channel configured"))
	}
	var errs []error
	for _, n := range m {
		err := n.Send(ctx, alert)
		if err == nil {
			continue
		}
		slog.Warn("notification channel failed", "session", alert.SessionID, "error", err)
		errs = append(errs, err)
	}
	if len(errs) == len(m) {
		return deliveryFailed("multi", errors.Join(errs...))
	}
	return nil
}
