// Package batchfile reads conversation batches from files or stdin
//
// A batch is one of: an object {"conversations": [...], "processNlu": bool},
// a bare array of conversations, or newline delimited conversations. Any of
// them may be gzip compressed; compression is detected from the magic bytes.
// A leading byte order mark is honored, so UTF-16 exports decode as well.
package batchfile

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"trackerhub/internal/platform/logger"

	"github.com/goccy/go-json"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Formats a batch can be read from
const (
	FormatObject = "object"
	FormatArray  = "array"
	FormatNDJSON = "ndjson"
)

const sampleRawMax = 512

// ErrEmpty is returned when the input holds no JSON value
var ErrEmpty = errors.New("batchfile: empty input")

// Batch is a decoded batch file
type Batch struct {
	Conversations []json.RawMessage
	// ProcessNLU is nil unless the object form sets it
	ProcessNLU *bool
	Format     string
	Gzip       bool
	// Bytes counts decoded UTF-8 input
	Bytes int64
}

// Open opens path for reading; "-" reads stdin and is never closed
func Open(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(path)
}

// Read decodes a batch from r, unwrapping gzip when present
func Read(r io.Reader) (Batch, error) {
	var b Batch
	br := bufio.NewReader(r)
	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return b, fmt.Errorf("batchfile: gzip: %w", err)
		}
		defer func() { _ = gz.Close() }()
		b.Gzip = true
		return read(gz, b)
	}
	return read(br, b)
}

func read(r io.Reader, b Batch) (Batch, error) {
	cr := &countingReader{r: transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))}
	dec := json.NewDecoder(cr)
	var vals []json.RawMessage
	for {
		var v json.RawMessage
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return b, fmt.Errorf("batchfile: value %d: %w", len(vals)+1, err)
		}
		vals = append(vals, v)
	}
	b.Bytes = cr.n
	if len(vals) == 0 {
		return b, ErrEmpty
	}

	logger.Named("batchfile").Debug().
		Int("values", len(vals)).
		Bool("gzip", b.Gzip).
		Str("sample_raw", truncateUTF8(vals[0], sampleRawMax)).
		Msg("batchfile: read")

	if len(vals) == 1 {
		switch first(vals[0]) {
		case '[':
			b.Format = FormatArray
			if err := json.Unmarshal(vals[0], &b.Conversations); err != nil {
				return b, fmt.Errorf("batchfile: array: %w", err)
			}
			return b, nil
		case '{':
			if ok, err := object(vals[0], &b); ok || err != nil {
				return b, err
			}
		}
	}
	b.Format = FormatNDJSON
	b.Conversations = vals
	return b, nil
}

// object decodes the {"conversations", "processNlu"} form; ok is false for any other object
func object(raw json.RawMessage, b *Batch) (bool, error) {
	var w struct {
		Conversations json.RawMessage `json:"conversations"`
		ProcessNLU    *bool           `json:"processNlu"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return false, fmt.Errorf("batchfile: object: %w", err)
	}
	if w.Conversations == nil {
		return false, nil
	}
	if first(w.Conversations) != '[' {
		return true, errors.New("batchfile: conversations should be an array")
	}
	if err := json.Unmarshal(w.Conversations, &b.Conversations); err != nil {
		return true, fmt.Errorf("batchfile: conversations: %w", err)
	}
	b.Format = FormatObject
	b.ProcessNLU = w.ProcessNLU
	return true, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func first(raw []byte) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

// truncateUTF8 cuts b to at most max bytes on a rune boundary, with an ellipsis when cut
func truncateUTF8(b []byte, max int) string {
	if max <= 0 || len(b) <= max {
		return string(b)
	}
	i := max
	for i > 0 && (b[i]&0xC0) == 0x80 {
		i--
	}
	if i <= 0 {
		i = max
	}
	return string(b[:i]) + "..."
}
