package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// openExtract wraps a raw reader with the decompressor matching the file
// extension. Plain .csv passes through.
func openExtract(r io.Reader, fileName string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(fileName, ".gz"):
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", fileName, err)
		}
		return gr, nil
	case strings.HasSuffix(fileName, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open zstd %s: %w", fileName, err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

// isExtract reports whether a file name looks like a raw CSV extract.
func isExtract(fileName string) bool {
	name := strings.ToLower(fileName)
	return strings.HasSuffix(name, ".csv") ||
		strings.HasSuffix(name, ".csv.gz") ||
		strings.HasSuffix(name, ".csv.zst")
}
