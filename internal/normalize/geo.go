package normalize

import (
	"strings"

	"github.com/veralake/medallion-etl/internal/record"
)

// validStates is the official set of 27 Brazilian federative unit codes.
var validStates = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {},
	"ES": {}, "GO": {}, "MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {},
	"PB": {}, "PR": {}, "PE": {}, "PI": {}, "RJ": {}, "RN": {}, "RS": {},
	"RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

// StateCode validates a two-letter state code against the canonical UF set.
// Case is normalized; anything outside the set is a text null.
func StateCode(raw string) record.Text {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return record.Text{}
	}
	if _, ok := validStates[s]; !ok {
		return record.Text{}
	}
	return record.SomeText(s)
}
