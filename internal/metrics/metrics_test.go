package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/internal/service/monitor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus(t *testing.T) {
	p := NewPrometheus()
	p.TickDone(monitor.OutcomeNotified)
	p.TickDone(monitor.OutcomeNotified)
	p.AlertSent(domain.AlertBuy)
	p.DeliveryFailed(domain.AlertSell)
	p.ObserveQuote("PETR4", 20*time.Millisecond, errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(p.ticks.WithLabelValues(monitor.OutcomeNotified)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.alerts.WithLabelValues("buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.deliveryFailed.WithLabelValues("sell")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.quoteFailed.WithLabelValues("PETR4")))

	n, err := testutil.GatherAndCount(p.Registry(), "pricewatch_alerts_sent_total", "pricewatch_quote_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pricewatch_ticks_total")
}
