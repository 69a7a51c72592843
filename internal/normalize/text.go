package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/veralake/medallion-etl/internal/record"
)

// stripMarks decomposes accented characters and drops the combining marks,
// so "São Paulo" becomes "Sao Paulo".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CleanString trims, lower-cases and strips diacritics from a free-text
// value. Empty input is a text null.
func CleanString(raw string) record.Text {
	s := strings.TrimSpace(raw)
	if s == "" {
		return record.Text{}
	}
	s = strings.ToLower(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return record.SomeText(s)
}
