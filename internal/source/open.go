// Package source reads downloaded parallel corpora into a bitext.Corpus.
package source

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Open opens path for reading as UTF-8 text. A ".gz" suffix is decompressed
// on the fly; a UTF-8 BOM is dropped and UTF-16 input with a BOM is
// transcoded. Invalid UTF-8 is replaced with U+FFFD.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	var r io.Reader = f
	closers := []io.Closer{f}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open source %s: %w", path, err)
		}
		r = gz
		closers = append([]io.Closer{gz}, closers...)
	}
	return &textReader{
		Reader:  Decode(r),
		closers: closers,
	}, nil
}

// Decode wraps r in a BOM-sniffing decoder that yields UTF-8.
func Decode(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

type textReader struct {
	io.Reader
	closers []io.Closer
}

func (t *textReader) Close() error {
	var first error
	for _, c := range t.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
