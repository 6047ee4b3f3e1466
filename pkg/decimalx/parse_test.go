package decimalx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "9.50", want: "9.5"},
		{name: "comma", in: "9,50", want: "9.5"},
		{name: "spaces", in: " 20 ", want: "20"},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "ten", wantErr: true},
		{name: "thousands", in: "1,000.5", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "9.50", Money(decimal.RequireFromString("9.5")))
	assert.Equal(t, "10.00", Money(decimal.NewFromInt(10)))
	assert.Equal(t, "0.13", Money(decimal.RequireFromString("0.125")))
}
