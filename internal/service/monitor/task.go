package monitor

import (
	"context"

	"github.com/KNICEX/price-watch/internal/schedule"
)

// SessionTickTask 把单个会话的检查包装成定时任务
type SessionTickTask struct {
	ticker    Ticker
	sessionID string
}

func NewSessionTickTask(ticker Ticker, sessionID string) schedule.Task {
	return &SessionTickTask{
		ticker:    ticker,
		sessionID: sessionID,
	}
}

func (t *SessionTickTask) Run(ctx context.Context) error {
	_, err := t.ticker.Tick(ctx, t.sessionID)
	return err
}

func (t *SessionTickTask) Name() string {
	return "price monitor session " + t.sessionID
}
