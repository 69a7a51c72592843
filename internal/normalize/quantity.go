package normalize

import (
	"strconv"
	"strings"

	"github.com/veralake/medallion-etl/internal/record"
)

// numberWords is the spelled-out vocabulary seen in the raw extracts.
var numberWords = map[string]int64{
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
}

// Quantity normalizes a quantity to an integer. Numeric tokens (including
// decimal-looking ones like "3.0") convert directly; a small vocabulary of
// spelled-out numbers is accepted; everything else is an integer null.
func Quantity(raw string) record.Integer {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return record.Integer{}
	}

	if n, ok := numberWords[s]; ok {
		return record.SomeInteger(n)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return record.SomeInteger(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return record.SomeInteger(int64(f))
	}
	return record.Integer{}
}
