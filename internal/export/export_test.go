package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/pairide/internal"
	"gopkg.in/yaml.v3"
)

func testNotebook() *internal.Notebook {
	state := internal.CreateTestState()
	notebook := state.Notebooks["nb1"]
	failed := "RuntimeError: integer division by zero"
	notebook.Cells[1].LastResult = &internal.ExecutionResult{
		Success:   false,
		Error:     &failed,
		Timestamp: "2024-01-01T00:00:02Z",
		Variables: []string{"value"},
	}
	return notebook
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{format: "json", wantExt: "json"},
		{format: "jsonl", wantExt: "jsonl"},
		{format: "yaml", wantExt: "yaml"},
		{format: "yml", wantExt: "yaml"},
		{format: "md", wantExt: "md"},
		{format: "markdown", wantExt: "md"},
		{format: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if !tt.wantErr && exporter.Extension() != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", exporter.Extension(), tt.wantExt)
			}
		})
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	notebook := testNotebook()
	if err := (&JSONExporter{}).Export(notebook, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded internal.Notebook
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("exported JSON does not decode: %v", err)
	}
	if decoded.ID != notebook.ID || len(decoded.Cells) != len(notebook.Cells) {
		t.Errorf("decoded = %+v, want %d cells of %s", decoded, len(notebook.Cells), notebook.ID)
	}
	if decoded.Cells[0].LastResult == nil || decoded.Cells[0].LastResult.Stdout != "42\n" {
		t.Errorf("first cell result = %+v, want stdout 42", decoded.Cells[0].LastResult)
	}
}

func TestJSONLExporter(t *testing.T) {
	var buf bytes.Buffer
	notebook := testNotebook()
	if err := (&JSONLExporter{}).Export(notebook, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var lines []map[string]any
	for scanner.Scan() {
		line := map[string]any{}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("line %q does not decode: %v", scanner.Text(), err)
		}
		lines = append(lines, line)
	}
	if len(lines) != len(notebook.Cells) {
		t.Fatalf("got %d lines, want %d", len(lines), len(notebook.Cells))
	}
	for i, line := range lines {
		if line["notebook_id"] != notebook.ID || line["index"] != float64(i) {
			t.Errorf("line %d = %v, want notebook id and index", i, line)
		}
	}
	if _, ok := lines[2]["last_result"]; ok {
		t.Error("markdown cell that never ran should have no last_result")
	}
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	notebook := testNotebook()
	if err := (&YAMLExporter{}).Export(notebook, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("exported YAML does not decode: %v", err)
	}
	if decoded["title"] != "Exploration" {
		t.Errorf("title = %v, want Exploration", decoded["title"])
	}
	cells, ok := decoded["cells"].([]any)
	if !ok || len(cells) != 3 {
		t.Fatalf("cells = %v, want 3 entries", decoded["cells"])
	}
	first := cells[0].(map[string]any)
	if first["cell_type"] != "code" {
		t.Errorf("cell_type = %v, want code", first["cell_type"])
	}
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(testNotebook(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Exploration\n",
		"```starlark\nvalue = 21 * 2\nprint(value)\n```",
		"```text\n42\n```",
		"**Variables:** value",
		"> **Error:** RuntimeError: integer division by zero",
		"_Run failed at 2024-01-01T00:00:02Z",
		"# Notes\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown is missing %q:\n%s", want, out)
		}
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "**bold**", want: `\*\*bold\*\*`},
		{in: "__under__", want: `\_\_under\_\_`},
		{in: "```\n**kept**\n```", want: "```\n**kept**\n```"},
	}
	for _, tt := range tests {
		if got := escapeMarkdown(tt.in); got != tt.want {
			t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
