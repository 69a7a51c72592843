package normalize

import (
	"strings"

	"github.com/veralake/medallion-etl/internal/record"
)

// Phone reduces a phone value to bare digits (area code + number).
// A leading +55 country code is stripped; the result is valid only with
// 10 or 11 digits. Anything else is a text null.
func Phone(raw string) record.Text {
	s := strings.TrimSpace(raw)
	if s == "" {
		return record.Text{}
	}

	// All records originate from Brazil; drop the country code if present.
	s = strings.TrimPrefix(s, "+55")

	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	d := digits.String()
	if len(d) < 10 || len(d) > 11 {
		return record.Text{}
	}
	return record.SomeText(d)
}
