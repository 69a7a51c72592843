package normalize

import (
	"strings"
	"time"

	"github.com/veralake/medallion-etl/internal/record"
)

// timestampFormats lists the layouts observed in the raw extracts,
// most specific first. Day-first layouts come after ISO forms so an
// unambiguous ISO value never parses as day-first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
}

// ParseTimestamp parses a timestamp using the known layouts and returns it
// in UTC. Unparseable input is a temporal null.
func ParseTimestamp(raw string) record.Timestamp {
	s := strings.TrimSpace(raw)
	if s == "" {
		return record.Timestamp{}
	}
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return record.SomeTimestamp(t)
		}
	}
	return record.Timestamp{}
}

// TimestampPair parses a (start, end) pair independently, then enforces
// ordering: if both parse and end precedes start, the inconsistency
// invalidates the pair and both come back null. A pair with only one
// parseable side keeps that side.
func TimestampPair(rawStart, rawEnd string) (record.Timestamp, record.Timestamp) {
	start := ParseTimestamp(rawStart)
	end := ParseTimestamp(rawEnd)
	if start.Valid && end.Valid && end.Val.Before(start.Val) {
		return record.Timestamp{}, record.Timestamp{}
	}
	return start, end
}
