package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1200", "1200.00"},
		{"0.005", "0.01"},
		{"-0.005", "-0.01"},
		{"19.994", "19.99"},
		{"1e3", "1000.00"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, Format(got))
		})
	}

	_, err := Parse("12,50")
	assert.Error(t, err)
}

func TestPercentAndRatio(t *testing.T) {
	d := decimal.RequireFromString

	assert.Equal(t, "33.33", Format(Percent(d("1"), d("3"))))
	assert.True(t, Percent(d("5"), decimal.Zero).IsZero())

	assert.Equal(t, "0.6667", Ratio(d("2"), d("3")).StringFixed(4))
	assert.True(t, Ratio(d("2"), decimal.Zero).IsZero())
}

func TestSumAndClamp(t *testing.T) {
	d := decimal.RequireFromString

	assert.Equal(t, "0.30", Format(Sum(d("0.1"), d("0.2"))))
	assert.True(t, Clamp(d("-4")).IsZero())
	assert.Equal(t, "4.00", Format(Clamp(d("4"))))
	assert.True(t, Max.GreaterThan(d("999999999999")))
}
