package brapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KNICEX/price-watch/internal/service/quote"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://brapi.dev/api"

var _ quote.Source = (*Source)(nil)

// Source 从 brapi.dev 获取 B3 行情
type Source struct {
	baseURL string
	token   string
	cli     *http.Client
}

type Option func(s *Source)

func WithToken(token string) Option {
	return func(s *Source) {
		s.token = token
	}
}

func WithHTTPClient(cli *http.Client) Option {
	return func(s *Source) {
		s.cli = cli
	}
}

func NewSource(baseURL string, opts ...Option) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	s := &Source{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cli:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type quoteResponse struct {
	Results []struct {
		Symbol             string          `json:"symbol"`
		RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
		RegularMarketTime  json.RawMessage `json:"regularMarketTime"`
	} `json:"results"`
}

func (s *Source) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/quote/%s", s.baseURL, url.PathEscape(symbol))
	if s.token != "" {
		u += "?token=" + url.QueryEscape(s.token)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, quote.Unavailable(symbol, err)
	}
	resp, err := s.cli.Do(req)
	if err != nil {
		return decimal.Zero, quote.Unavailable(symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, quote.Unavailable(symbol, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, quote.Unavailable(symbol, fmt.Errorf("decode response: %w", err))
	}
	if len(body.Results) == 0 {
		return decimal.Zero, quote.Unavailable(symbol, fmt.Errorf("symbol %s not found", symbol))
	}
	return quote.CheckPrice(symbol, body.Results[0].RegularMarketPrice)
}
