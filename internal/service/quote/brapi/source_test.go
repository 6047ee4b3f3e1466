package brapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KNICEX/price-watch/internal/service/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_GetPrice(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "ok",
			status: http.StatusOK,
			body:   `{"results":[{"symbol":"PETR4","regularMarketPrice":37.42,"regularMarketTime":"2024-05-10T20:07:00.000Z"}]}`,
			want:   "37.42",
		},
		{
			name:    "empty results",
			status:  http.StatusOK,
			body:    `{"results":[]}`,
			wantErr: true,
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{"error":true}`,
			wantErr: true,
		},
		{
			name:    "zero price",
			status:  http.StatusOK,
			body:    `{"results":[{"symbol":"PETR4","regularMarketPrice":0}]}`,
			wantErr: true,
		},
		{
			name:    "garbage",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/quote/PETR4", r.URL.Path)
				assert.Equal(t, "secret", r.URL.Query().Get("token"))
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			src := NewSource(srv.URL+"/api/", WithToken("secret"), WithHTTPClient(srv.Client()))
			price, err := src.GetPrice(context.Background(), "PETR4")
			if tc.wantErr {
				assert.ErrorIs(t, err, quote.ErrQuoteUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, price.String())
		})
	}
}
