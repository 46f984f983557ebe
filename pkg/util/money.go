package util

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatKRW renders a won amount with thousands separators and no decimals: 1,234원.
func FormatKRW(v float64) string {
	return groupThousands(decimal.NewFromFloat(v).Round(0).StringFixed(0)) + "원"
}

// FormatUSD renders a dollar amount with two decimals: $1,234.56.
func FormatUSD(v float64) string {
	s := decimal.NewFromFloat(v).Round(2).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	out := "$" + groupThousands(s)
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
