package exporter

import (
	"fmt"
	"strings"
)

// formatFloat renders a value for CSV output with exactly 2 decimal
// places so 13.4 appears as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatPercent renders a market-share percentage, e.g. "37.5%".
func formatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}

// formatMoney renders a monetary value with thousands separators,
// e.g. "1,234,567.89".
func formatMoney(f float64) string {
	s := fmt.Sprintf("%.2f", f)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
