package tables

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
)

// Codec resolves a configured compression name to a parquet codec.
// Unknown names fall back to snappy.
func Codec(name string) compress.Codec {
	switch name {
	case "zstd":
		return &parquet.Zstd
	case "gzip":
		return &parquet.Gzip
	case "none", "uncompressed":
		return &parquet.Uncompressed
	default:
		return &parquet.Snappy
	}
}

// Encode serializes rows into an in-memory parquet file.
func Encode[T any](rows []T, codec compress.Codec) ([]byte, error) {
	buf := new(bytes.Buffer)

	w := parquet.NewGenericWriter[T](buf, parquet.Compression(codec))
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return nil, fmt.Errorf("write rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode reads every row of an in-memory parquet file.
func Decode[T any](data []byte) ([]T, error) {
	rows, err := parquet.Read[T](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}
