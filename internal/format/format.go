// Package format holds the display-only formatting helpers for the
// dashboard rows. All functions are deterministic and never parsed back.
package format

import (
	"fmt"
	"strings"
	"time"
)

const rupee = "₹"

// Currency renders an amount as rupees with Indian digit grouping and
// exactly two decimals, e.g. 123456.7 -> "₹1,23,456.70". Negative amounts
// keep a leading minus sign, never parentheses.
func Currency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	s := fmt.Sprintf("%.2f", amount)
	intPart := s[:len(s)-3]
	decPart := s[len(s)-3:]

	return sign + rupee + groupIndian(intPart) + decPart
}

// SignedCurrency is Currency with an explicit leading + for non-negative
// amounts, used for P&L figures.
func SignedCurrency(amount float64) string {
	if amount >= 0 {
		return "+" + Currency(amount)
	}
	return Currency(amount)
}

// Percent renders a percentage with two decimals and an explicit + for
// non-negative values, e.g. "+12.34%".
func Percent(value float64) string {
	if value >= 0 {
		return fmt.Sprintf("+%.2f%%", value)
	}
	return fmt.Sprintf("%.2f%%", value)
}

// DateTime renders a timestamp as day/month/year plus hour:minute.
func DateTime(t time.Time) string {
	return t.Format("02 Jan 2006, 15:04")
}

// DateTimeString parses a server timestamp and renders it like DateTime.
// Unparseable input is returned as-is rather than blanking the row.
func DateTimeString(s string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTime(t)
		}
	}
	return s
}

// groupIndian inserts commas in the Indian style: the last three digits form
// one group, everything before that is grouped in twos. "1234567" -> "12,34,567".
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}

	return strings.Join(groups, ",") + "," + tail
}
