package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrQuoteUnavailable = errors.New("quote unavailable")

// Source 提供标的当前价格
type Source interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Unavailable wraps err so that errors.Is(err, ErrQuoteUnavailable) holds.
func Unavailable(symbol string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrQuoteUnavailable, symbol, err)
}

// CheckPrice rejects prices that cannot be compared against a threshold.
func CheckPrice(symbol string, price decimal.Decimal) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, Unavailable(symbol, fmt.Errorf("non-positive price %s", price))
	}
	return price, nil
}
