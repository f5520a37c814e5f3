package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole_InfoRespectsQuiet(t *testing.T) {
	var out, errBuf bytes.Buffer

	c := NewConsole(&out, &errBuf, false)
	c.Info("Submodule path '%s': checked out '%s'", "lib", "abc")
	if got := out.String(); got != "Submodule path 'lib': checked out 'abc'\n" {
		t.Fatalf("Info output = %q", got)
	}

	out.Reset()
	quiet := NewConsole(&out, &errBuf, true)
	quiet.Info("suppressed")
	if out.Len() != 0 {
		t.Fatalf("quiet console wrote info: %q", out.String())
	}
}

func TestConsole_ErrorfIgnoresQuiet(t *testing.T) {
	var out, errBuf bytes.Buffer
	c := NewConsole(&out, &errBuf, true)
	c.Errorf("Unable to fetch in submodule path '%s'", "lib")
	if !strings.Contains(errBuf.String(), "Unable to fetch in submodule path 'lib'") {
		t.Fatalf("diagnostic suppressed: %q", errBuf.String())
	}
	if out.Len() != 0 {
		t.Fatalf("diagnostic leaked to stdout: %q", out.String())
	}
}

func TestConsole_FatalPrefixPreservedVerbatim(t *testing.T) {
	var errBuf bytes.Buffer
	c := NewConsole(nil, &errBuf, false)
	c.Errorf("fatal: A failed")

	// Color codes may wrap the marker, but the scrape-able text must survive.
	plain := stripANSI(errBuf.String())
	if plain != "fatal: A failed\n" {
		t.Fatalf("stderr = %q, want %q", plain, "fatal: A failed\n")
	}
}

func TestConsole_NilIsSafe(t *testing.T) {
	var c *Console
	c.Info("ignored")
	c.Errorf("ignored")
	if c.ErrWriter() == nil || c.OutWriter() == nil {
		t.Fatal("nil console returned nil writers")
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
