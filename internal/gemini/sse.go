package gemini

import (
	"bufio"
	"bytes"
	"io"
)

// maxEventSize bounds a single server-sent event. Final reports arrive as
// one event and can be large.
const maxEventSize = 16 << 20

// sseReader splits a text/event-stream body into event payloads.
type sseReader struct {
	scanner *bufio.Scanner
}

func newSSEReader(r io.Reader) *sseReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &sseReader{scanner: scanner}
}

// Next returns the data of the next event. Multi-line data fields are
// joined with "\n". It returns io.EOF once the stream is exhausted.
func (r *sseReader) Next() ([]byte, error) {
	var data [][]byte

	for r.scanner.Scan() {
		line := r.scanner.Bytes()

		if len(line) == 0 {
			if len(data) > 0 {
				return bytes.Join(data, []byte("\n")), nil
			}
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		if string(field) != "data" {
			// Comments, event names, ids and retry hints are not used.
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))
		data = append(data, append([]byte(nil), value...))
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		return bytes.Join(data, []byte("\n")), nil
	}
	return nil, io.EOF
}
