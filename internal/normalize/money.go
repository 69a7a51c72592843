package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/veralake/medallion-etl/internal/record"
)

// Money parses a monetary value, handling Brazilian locale formatting
// ("2.026,00" → 2026.00, "10,5" → 10.50). Negative or unparseable values
// are numeric nulls. The parsed precision is kept as is; rounding happens
// where metrics are computed, so a 15.005 discount nets out half-up.
func Money(raw string) record.Number {
	s := strings.TrimSpace(raw)
	if s == "" {
		return record.Number{}
	}

	// "." as thousands separator only counts when "," carries the decimals.
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return record.Number{}
	}
	if d.IsNegative() {
		return record.Number{}
	}
	return record.SomeNumber(d)
}

// RoundMoney applies the pipeline's single rounding rule: half-up
// (half away from zero) to 2 decimal places. Every monetary and duration
// metric goes through this at the point of computation.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
