package submodule

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The clone phase emits one line per completed submodule:
//
//	dummy <oid> <0|1> <path>
//
// The first token is a placeholder so that ordinary records and the terminal
// unmatched-path line have distinguishable shapes. When the requested
// pathspec matched nothing, the stream consists of a single line
//
//	#unmatched <status>
//
// and ends.
const (
	recordMarker    = "dummy"
	unmatchedMarker = "#unmatched"
)

// StreamReader yields clone-phase records as they arrive. It never buffers
// the whole stream: clone work for different submodules completes at
// different times, and the consumer starts on the first finished submodule
// while later ones are still settling. Producer emission order is preserved
// exactly.
type StreamReader struct {
	scanner *bufio.Scanner
}

func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{scanner: bufio.NewScanner(r)}
}

// Next returns the next record. It returns io.EOF when the stream is
// exhausted, and *UnmatchedError when the producer terminated the stream
// with an unmatched-path status line.
func (sr *StreamReader) Next() (Record, error) {
	for sr.scanner.Scan() {
		line := strings.TrimRight(sr.scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		return parseRecord(line)
	}
	if err := sr.scanner.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

func parseRecord(line string) (Record, error) {
	marker, rest, _ := strings.Cut(line, " ")
	if marker == unmatchedMarker {
		status, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return Record{}, fmt.Errorf("malformed unmatched terminator %q", line)
		}
		return Record{}, &UnmatchedError{Status: status}
	}
	if marker != recordMarker {
		return Record{}, fmt.Errorf("malformed record %q: unknown marker %q", line, marker)
	}

	// Paths may contain spaces; only the first three fields are atomic.
	fields := strings.SplitN(rest, " ", 3)
	if len(fields) != 3 || fields[0] == "" || fields[2] == "" {
		return Record{}, fmt.Errorf("malformed record %q", line)
	}
	var justCreated bool
	switch fields[1] {
	case "0":
		justCreated = false
	case "1":
		justCreated = true
	default:
		return Record{}, fmt.Errorf("malformed record %q: bad creation flag %q", line, fields[1])
	}
	return Record{
		Path:        fields[2],
		TargetOID:   fields[0],
		JustCreated: justCreated,
	}, nil
}

// formatRecord renders the wire form of a record. The clone phase uses it so
// that producer and consumer agree on one format definition.
func formatRecord(oid string, justCreated bool, path string) string {
	created := "0"
	if justCreated {
		created = "1"
	}
	return fmt.Sprintf("%s %s %s %s\n", recordMarker, oid, created, path)
}

func formatUnmatched(status int) string {
	return fmt.Sprintf("%s %d\n", unmatchedMarker, status)
}
