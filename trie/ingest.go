package trie

import (
	"fmt"
	"io"
	"os"
)

// DefaultBufferSize is the chunk size used by bulk ingestion when the caller
// passes a non-positive size.
const DefaultBufferSize = 1 << 20

// BulkInsertFromFile opens path and feeds every line into Insert. See
// BulkInsertFromReader for line semantics and the meaning of the returned
// count.
func (t *Trie) BulkInsertFromFile(path string, bufferSize int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	n, err := t.BulkInsertFromReader(f, bufferSize)
	if err != nil {
		return n, fmt.Errorf("read %s: %w", path, err)
	}
	return n, nil
}

// BulkInsertFromReader reads r in chunks of bufferSize bytes and inserts one
// word per line. Lines are delimited by any run of '\n' or '\r'; each line is
// trimmed of leading and trailing ASCII whitespace and skipped when empty. A
// partial line at the end of a chunk is carried over and prepended to the
// next chunk; a trailing line without a final delimiter is still processed.
//
// The returned count is the number of records fed to Insert, duplicates
// included; it can exceed the growth of Size.
func (t *Trie) BulkInsertFromReader(r io.Reader, bufferSize int) (int, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	buf := make([]byte, bufferSize)
	var carry []byte
	inserted := 0

	flush := func(seg []byte) {
		if len(carry) > 0 {
			carry = append(carry, seg...)
			seg = carry
		}
		if word := trimASCIISpace(seg); len(word) > 0 {
			t.Insert(string(word))
			inserted++
		}
		carry = carry[:0]
	}

	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			lineStart := 0
			for i := 0; i < len(chunk); i++ {
				c := chunk[i]
				if c != '\n' && c != '\r' {
					continue
				}
				if i > lineStart || len(carry) > 0 {
					flush(chunk[lineStart:i])
				}
				// A run of CR/LF bytes is one delimiter.
				for i+1 < len(chunk) && (chunk[i+1] == '\n' || chunk[i+1] == '\r') {
					i++
				}
				lineStart = i + 1
			}
			if lineStart < len(chunk) {
				carry = append(carry, chunk[lineStart:]...)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, err
		}
	}
	if len(carry) > 0 {
		flush(nil)
	}
	return inserted, nil
}

// trimASCIISpace trims leading and trailing ASCII whitespace in place,
// returning a subslice of b.
func trimASCIISpace(b []byte) []byte {
	start, end := 0, len(b)
	for end > start && isASCIISpace(b[end-1]) {
		end--
	}
	for start < end && isASCIISpace(b[start]) {
		start++
	}
	return b[start:end]
}

func isASCIISpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
