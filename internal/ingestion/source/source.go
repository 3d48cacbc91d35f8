// Package source reads raw NDJSON record lines from files, stdin, Kafka,
// Redis lists, or PostgreSQL tables.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// MaxLineSize bounds a single record line.
const MaxLineSize = 16 << 20

// Source yields one record line per call to Next and io.EOF once drained.
type Source interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// ReaderSource reads newline-delimited lines from an io.Reader. A trailing
// carriage return is dropped from each line.
type ReaderSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

// NewReaderSource wraps r. closer may be nil.
func NewReaderSource(r io.Reader, closer io.Closer) *ReaderSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &ReaderSource{scanner: scanner, closer: closer}
}

func (s *ReaderSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading line: %w", err)
		}
		return nil, io.EOF
	}
	line := make([]byte, len(s.scanner.Bytes()))
	copy(line, s.scanner.Bytes())
	return line, nil
}

func (s *ReaderSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// OpenFile opens path as a line source. "-" or "" reads stdin. Files ending
// in .gz or .xz are decompressed on the fly.
func OpenFile(path string) (*ReaderSource, error) {
	if path == "" || path == "-" {
		return NewReaderSource(os.Stdin, nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	r, err := decompress(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return NewReaderSource(r, f), nil
}

func decompress(path string, f *os.File) (io.Reader, error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		return zr, nil
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("opening xz stream %s: %w", path, err)
		}
		return xr, nil
	default:
		return f, nil
	}
}
