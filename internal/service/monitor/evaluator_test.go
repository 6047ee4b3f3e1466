package monitor

import (
	"testing"

	"github.com/KNICEX/price-watch/internal/domain"
	"github.com/KNICEX/price-watch/pkg/decimalx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func session(buy, sell string, buySent, sellSent bool) domain.Session {
	return domain.Session{
		ID:            "s1",
		Symbol:        "PETR4",
		Status:        domain.StatusActive,
		BuyThreshold:  decimalx.MustFromString(buy),
		SellThreshold: decimalx.MustFromString(sell),
		BuyAlertSent:  buySent,
		SellAlertSent: sellSent,
	}
}

func TestEvaluate(t *testing.T) {
	testCases := []struct {
		name    string
		session domain.Session
		price   string
		want    Crossing
	}{
		{name: "between thresholds", session: session("10", "20", false, false), price: "15", want: CrossingNone},
		{name: "below buy", session: session("10", "20", false, false), price: "9.50", want: CrossingBuy},
		{name: "equal buy", session: session("10", "20", false, false), price: "10.00", want: CrossingBuy},
		{name: "buy already sent", session: session("10", "20", true, false), price: "9", want: CrossingNone},
		{name: "above sell", session: session("10", "20", false, false), price: "20.01", want: CrossingSell},
		{name: "equal sell", session: session("10", "20", false, false), price: "20", want: CrossingSell},
		{name: "sell already sent", session: session("10", "20", false, true), price: "25", want: CrossingNone},
		{name: "inverted thresholds buy wins", session: session("20", "10", false, false), price: "15", want: CrossingBuy},
		{name: "inverted thresholds sell after buy", session: session("20", "10", true, false), price: "15", want: CrossingSell},
		{name: "inverted thresholds both sent", session: session("20", "10", true, true), price: "15", want: CrossingNone},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.session, decimalx.MustFromString(tc.price)))
		})
	}
}

func TestEvaluate_BuyIffBelowThreshold(t *testing.T) {
	s := session("10", "1000", false, false)
	for cents := int64(1); cents <= 2000; cents += 7 {
		price := decimal.New(cents, -2)
		got := Evaluate(s, price)
		assert.Equal(t, price.LessThanOrEqual(s.BuyThreshold), got == CrossingBuy, "price %s", price)
	}
}

func TestEvaluate_NeverBuyOnceSent(t *testing.T) {
	s := session("10", "20", true, false)
	for cents := int64(1); cents <= 3000; cents += 13 {
		assert.NotEqual(t, CrossingBuy, Evaluate(s, decimal.New(cents, -2)))
	}
}

func TestCrossing_Kind(t *testing.T) {
	kind, ok := CrossingBuy.Kind()
	assert.True(t, ok)
	assert.Equal(t, domain.AlertBuy, kind)

	kind, ok = CrossingSell.Kind()
	assert.True(t, ok)
	assert.Equal(t, domain.AlertSell, kind)

	_, ok = CrossingNone.Kind()
	assert.False(t, ok)
}
