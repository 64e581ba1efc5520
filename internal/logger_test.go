package internal

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"pkt.systems/pslog"
)

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) entries(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(c.buf.Bytes(), []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("parse log entry %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func newCaptureLogger(capture *logCapture) pslog.Logger {
	return pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.DebugLevel,
		VerboseFields: true,
	})
}

// swapLogger installs l as the package logger for the duration of the test
func swapLogger(t *testing.T, l pslog.Logger) {
	t.Helper()
	previous := Logger()
	SetLogger(l)
	t.Cleanup(func() { SetLogger(previous) })
}

func TestSetVerbose(t *testing.T) {
	var buf bytes.Buffer
	previous := Logger()
	t.Cleanup(func() {
		SetVerbose(false)
		SetLogOutput(os.Stderr)
		SetLogger(previous)
	})

	SetLogOutput(&buf)
	SetVerbose(false)
	LogDebug("hidden debug line")
	if strings.Contains(buf.String(), "hidden debug line") {
		t.Errorf("debug output written without verbose: %q", buf.String())
	}

	SetVerbose(true)
	LogDebug("visible debug line")
	if !strings.Contains(buf.String(), "visible debug line") {
		t.Errorf("debug output missing with verbose: %q", buf.String())
	}
}

func TestLogFunctionsCarryFields(t *testing.T) {
	capture := &logCapture{}
	swapLogger(t, newCaptureLogger(capture))

	LogError("e", "op", "save")
	LogWarn("w", "op", "load")
	LogInfo("i", "notebook", "nb1")
	LogDebug("d", "session", "s1")

	entries := capture.entries(t)
	if len(entries) != 4 {
		t.Fatalf("got %d log entries, want 4: %s", len(entries), capture.buf.String())
	}
	if entries[0]["op"] != "save" || entries[1]["op"] != "load" {
		t.Errorf("op fields = %v, %v; want save, load", entries[0]["op"], entries[1]["op"])
	}
	if entries[2]["notebook"] != "nb1" {
		t.Errorf("notebook field = %v, want nb1", entries[2]["notebook"])
	}
	if entries[3]["session"] != "s1" {
		t.Errorf("session field = %v, want s1", entries[3]["session"])
	}
}
