package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	testCases := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Two decimals always", 1234.5, "₹1,234.50"},
		{"Negative uses minus sign, not parentheses", -1234.5, "-₹1,234.50"},
		{"Indian grouping over a lakh", 123456.7, "₹1,23,456.70"},
		{"Indian grouping over a crore", 12345678.9, "₹1,23,45,678.90"},
		{"Small amount ungrouped", 999, "₹999.00"},
		{"Zero", 0, "₹0.00"},
		{"Rounding", 0.005, "₹0.01"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Currency(tc.amount))
		})
	}
}

func TestSignedCurrency(t *testing.T) {
	assert.Equal(t, "+₹200.00", SignedCurrency(200))
	assert.Equal(t, "+₹0.00", SignedCurrency(0))
	assert.Equal(t, "-₹50.25", SignedCurrency(-50.25))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "+12.34%", Percent(12.34))
	assert.Equal(t, "+0.00%", Percent(0))
	assert.Equal(t, "-2.50%", Percent(-2.5))
}

func TestDateTime(t *testing.T) {
	ts := time.Date(2025, time.March, 7, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "07 Mar 2025, 14:05", DateTime(ts))
}

func TestDateTimeString(t *testing.T) {
	assert.Equal(t, "07 Mar 2025, 14:05", DateTimeString("2025-03-07T14:05:00Z"))
	assert.Equal(t, "07 Mar 2025, 14:05", DateTimeString("2025-03-07 14:05:00"))
	// Unparseable input passes through instead of blanking the row.
	assert.Equal(t, "not-a-date", DateTimeString("not-a-date"))
}
