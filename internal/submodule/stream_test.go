package submodule

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestStreamReader_ParseRecords(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Record
	}{
		{
			name: "existing worktree",
			line: "dummy 4c3f1b6e8c2f1f0a9d8e7c6b5a4f3e2d1c0b9a87 0 vendor/lib",
			want: Record{Path: "vendor/lib", TargetOID: "4c3f1b6e8c2f1f0a9d8e7c6b5a4f3e2d1c0b9a87"},
		},
		{
			name: "fresh clone",
			line: "dummy 4c3f1b6e8c2f1f0a9d8e7c6b5a4f3e2d1c0b9a87 1 deps/tool",
			want: Record{Path: "deps/tool", TargetOID: "4c3f1b6e8c2f1f0a9d8e7c6b5a4f3e2d1c0b9a87", JustCreated: true},
		},
		{
			name: "path with spaces",
			line: "dummy abc123 0 third party/lib name",
			want: Record{Path: "third party/lib name", TargetOID: "abc123"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := NewStreamReader(strings.NewReader(tt.line + "\n"))
			got, err := sr.Next()
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Next = %+v, want %+v", got, tt.want)
			}
			if _, err := sr.Next(); !errors.Is(err, io.EOF) {
				t.Fatalf("expected EOF after single record, got %v", err)
			}
		})
	}
}

func TestStreamReader_MalformedLines(t *testing.T) {
	lines := []string{
		"bogus abc 0 path",
		"dummy abc 2 path",
		"dummy abc 0",
		"dummy  0 path",
		"#unmatched notanumber",
	}
	for _, line := range lines {
		sr := NewStreamReader(strings.NewReader(line + "\n"))
		if _, err := sr.Next(); err == nil || errors.Is(err, io.EOF) {
			t.Errorf("line %q: expected parse error, got %v", line, err)
		}
	}
}

func TestStreamReader_UnmatchedTerminator(t *testing.T) {
	sr := NewStreamReader(strings.NewReader(formatUnmatched(17)))
	_, err := sr.Next()
	var unmatched *UnmatchedError
	if !errors.As(err, &unmatched) {
		t.Fatalf("expected UnmatchedError, got %v", err)
	}
	if unmatched.Status != 17 {
		t.Fatalf("Status = %d, want 17", unmatched.Status)
	}
}

func TestStreamReader_SkipsBlankLines(t *testing.T) {
	sr := NewStreamReader(strings.NewReader("\n\ndummy abc 0 lib\n\n"))
	rec, err := sr.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec.Path != "lib" {
		t.Fatalf("Path = %q, want %q", rec.Path, "lib")
	}
	if _, err := sr.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestStreamReader_DeliversRecordsBeforeStreamCloses(t *testing.T) {
	// The consumer must see each record as soon as the producer emits it,
	// not when the producer finishes.
	pr, pw := io.Pipe()
	sr := NewStreamReader(pr)

	type result struct {
		rec Record
		err error
	}
	got := make(chan result)
	go func() {
		rec, err := sr.Next()
		got <- result{rec, err}
	}()

	if _, err := io.WriteString(pw, formatRecord("abc123", true, "first")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case r := <-got:
		if r.err != nil {
			t.Fatalf("Next: %v", r.err)
		}
		if r.rec.Path != "first" || !r.rec.JustCreated {
			t.Fatalf("Next = %+v, want path %q just-created", r.rec, "first")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("record not delivered while the stream was still open")
	}

	pw.Close()
	if _, err := sr.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after close, got %v", err)
	}
}

func TestStreamReader_SurfacesProducerError(t *testing.T) {
	pr, pw := io.Pipe()
	sr := NewStreamReader(pr)

	go func() {
		io.WriteString(pw, formatRecord("abc123", false, "ok"))
		pw.CloseWithError(errors.New("clone failed"))
	}()

	rec, err := sr.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec.Path != "ok" {
		t.Fatalf("Path = %q, want %q", rec.Path, "ok")
	}
	_, err = sr.Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected producer error after records, got %v", err)
	}
	if !strings.Contains(err.Error(), "clone failed") {
		t.Fatalf("error = %v, want clone failure", err)
	}
}
