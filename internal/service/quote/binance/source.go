package binance

import (
	"context"
	"fmt"
	"strings"

	"github.com/KNICEX/price-watch/internal/service/quote"
	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

var _ quote.Source = (*Source)(nil)

// Source 币安现货最新成交价, symbol 使用 BTCUSDT 格式
type Source struct {
	cli *binance.Client
}

func NewSource(cli *binance.Client) *Source {
	return &Source{cli: cli}
}

func (s *Source) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
	prices, err := s.cli.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, quote.Unavailable(symbol, err)
	}
	if len(prices) == 0 {
		return decimal.Zero, quote.Unavailable(symbol, fmt.Errorf("symbol %s not found", symbol))
	}
	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return decimal.Zero, quote.Unavailable(symbol, err)
	}
	return quote.CheckPrice(symbol, price)
}
