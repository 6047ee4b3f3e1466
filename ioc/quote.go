package ioc

import (
	"fmt"
	"net/http"
	"time"

	"github.com/KNICEX/price-watch/internal/service/quote"
	"github.com/KNICEX/price-watch/internal/service/quote/binance"
	"github.com/KNICEX/price-watch/internal/service/quote/brapi"
	"github.com/spf13/viper"
)

func InitQuoteSource() quote.Source {
	type BrapiConfig struct {
		BaseURL string `mapstructure:"base_url"`
		Token   string `mapstructure:"token"`
	}

	provider := viper.GetString("quote.provider")
	switch provider {
	case "", "brapi":
		cfg := BrapiConfig{BaseURL: brapi.DefaultBaseURL}
		if err := viper.UnmarshalKey("quote.brapi", &cfg); err != nil {
			panic(err)
		}
		return brapi.NewSource(cfg.BaseURL,
			brapi.WithToken(cfg.Token),
			brapi.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		)
	case "binance":
		return binance.NewSource(InitBinanceCli())
	default:
		panic(fmt.Errorf("unsupported quote provider %q", provider))
	}
}
