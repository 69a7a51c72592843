// Package record defines the raw record model and the typed null wrappers
// shared by the Silver and Gold layers.
package record

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lineage columns stamped on every raw record by the ingestion collaborator.
const (
	ColSourceFolder     = "_source_file_folder"
	ColSourceFile       = "_source_file_name"
	ColSourceIngestDate = "_source_file_ingest_date"
	ColSourceModifiedTS = "_source_file_modified_ts"
	ColProcessedTS      = "_processed_ts"
)

// Lineage identifies where a raw record came from and when it was captured.
type Lineage struct {
	SourceFolder string
	SourceFile   string
	IngestDate   string // YYYY-MM-DD partition value
	ModifiedTS   time.Time
	ProcessedTS  time.Time
}

// Raw is a single untyped row from a raw extract plus its lineage.
// Fields hold the original string values; empty string means missing.
type Raw struct {
	Fields  map[string]string
	Lineage Lineage
}

// Get returns the raw value for a field, or "" if absent.
func (r Raw) Get(field string) string {
	return r.Fields[field]
}

// Text is a nullable string value.
type Text struct {
	Val   string
	Valid bool
}

// Integer is a nullable integer value.
type Integer struct {
	Val   int64
	Valid bool
}

// Number is a nullable fixed-precision decimal value.
type Number struct {
	Val   decimal.Decimal
	Valid bool
}

// Timestamp is a nullable UTC instant.
type Timestamp struct {
	Val   time.Time
	Valid bool
}

// Flag is a nullable boolean.
type Flag struct {
	Val   bool
	Valid bool
}

func SomeText(s string) Text          { return Text{Val: s, Valid: true} }
func SomeInteger(v int64) Integer     { return Integer{Val: v, Valid: true} }
func SomeNumber(d decimal.Decimal) Number {
	return Number{Val: d, Valid: true}
}
func SomeTimestamp(t time.Time) Timestamp {
	return Timestamp{Val: t.UTC(), Valid: true}
}
func SomeFlag(b bool) Flag { return Flag{Val: b, Valid: true} }

// Ptr returns a pointer suitable for optional parquet columns, nil when null.
func (t Text) Ptr() *string {
	if !t.Valid {
		return nil
	}
	v := t.Val
	return &v
}

func (i Integer) Ptr() *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Val
	return &v
}

// Ptr renders the decimal as a float64 for parquet storage. Values are
// already rounded to 2 decimal places by the normalizers, so the float
// representation is exact for the magnitudes this pipeline handles.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Val.InexactFloat64()
	return &v
}

func (ts Timestamp) Ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	v := ts.Val
	return &v
}

func (f Flag) Ptr() *bool {
	if !f.Valid {
		return nil
	}
	v := f.Val
	return &v
}

// TextFromPtr rebuilds a Text from an optional parquet column.
func TextFromPtr(p *string) Text {
	if p == nil {
		return Text{}
	}
	return SomeText(*p)
}

func IntegerFromPtr(p *int64) Integer {
	if p == nil {
		return Integer{}
	}
	return SomeInteger(*p)
}

func NumberFromPtr(p *float64) Number {
	if p == nil {
		return Number{}
	}
	return SomeNumber(decimal.NewFromFloat(*p))
}

func TimestampFromPtr(p *time.Time) Timestamp {
	if p == nil {
		return Timestamp{}
	}
	return SomeTimestamp(*p)
}

func FlagFromPtr(p *bool) Flag {
	if p == nil {
		return Flag{}
	}
	return SomeFlag(*p)
}
