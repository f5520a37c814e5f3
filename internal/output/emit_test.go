package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestEmitSink_JSON_AggregatesUntilClose(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewEmitSink(&buf, "json")
	if err != nil {
		t.Fatalf("NewEmitSink returned error: %v", err)
	}

	_ = s.Write(Event{Type: "update.started"})
	_ = s.Write(Event{Type: "submodule.updated", Path: "lib", OID: "abc"})

	if buf.Len() != 0 {
		t.Fatalf("json format wrote before Close: %q", buf.String())
	}

	code := 0
	_ = s.Write(Event{Type: "update.finished", ExitCode: &code})
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	var events []Event
	if err := json.Unmarshal(buf.Bytes(), &events); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[1].Path != "lib" || events[1].OID != "abc" {
		t.Fatalf("event payload mismatch: %+v", events[1])
	}
	if events[2].ExitCode == nil || *events[2].ExitCode != 0 {
		t.Fatalf("exit code not carried: %+v", events[2])
	}
}

func TestEmitSink_NDJSON_StreamsPerWrite(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewEmitSink(&buf, "ndjson")
	if err != nil {
		t.Fatalf("NewEmitSink returned error: %v", err)
	}

	_ = s.Write(Event{Type: "submodule.updated", Path: "a"})
	first := buf.String()
	if !strings.Contains(first, `"submodule.updated"`) {
		t.Fatalf("first event not written immediately: %q", first)
	}

	_ = s.Write(Event{Type: "submodule.failed", Path: "b", Code: 1})
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	for _, line := range lines {
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("line is not valid JSON: %v\n%s", err, line)
		}
	}
}

func TestEmitSink_RejectsBadInputs(t *testing.T) {
	if _, err := NewEmitSink(nil, "json"); err == nil {
		t.Fatal("nil writer accepted")
	}
	if _, err := NewEmitSink(&bytes.Buffer{}, "yaml"); err == nil {
		t.Fatal("unsupported format accepted")
	}
}
