package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/price-watch/internal/service/llm"
	"github.com/KNICEX/price-watch/pkg/decimalx"
)

// Annotator adds an optional free-form note to an alert message.
// It never fails delivery: an empty note is simply left out.
type Annotator interface {
	Annotate(ctx context.Context, alert Alert) string
}

type noopAnnotator struct{}

func (noopAnnotator) Annotate(ctx context.Context, alert Alert) string {
	return ""
}

type llmAnnotator struct {
	llmSvc  llm.Service
	timeout time.Duration
}

func NewLLMAnnotator(llmSvc llm.Service, timeout time.Duration) Annotator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &llmAnnotator{
		llmSvc:  llmSvc,
		timeout: timeout,
	}
}

func (a *llmAnnotator) Annotate(ctx context.Context, alert Alert) string {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := fmt.Sprintf("The price of %s just reached %s, crossing the user's %s threshold of %s. "+
		"Write one short neutral sentence (max 40 words) the user may want to consider before acting. "+
		"Do not give financial advice and do not invent news.",
		alert.Symbol, decimalx.Money(alert.Price), alert.Kind, decimalx.Money(alert.Threshold))

	answer, err := a.llmSvc.AskOnce(ctx, llm.Question{Content: prompt})
	if err != nil {
		slog.Warn("skip alert note", "session", alert.SessionID, "error", err)
		return ""
	}
	return strings.TrimSpace(answer.Content)
}
