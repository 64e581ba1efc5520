package internal

import (
	"context"
	"strings"
	"testing"

	"github.com/iksnae/pairide/testutil"
)

func TestDatasetsModule(t *testing.T) {
	registry, _ := newTestRegistry(t)

	tests := []struct {
		name       string
		source     string
		wantStdout string
		wantErr    string
	}{
		{
			name:       "names",
			source:     "print(datasets.names())",
			wantStdout: `["sample"]` + "\n",
		},
		{
			name:       "get",
			source:     "ref = datasets.get('sample')\nprint(ref['format'], ref['description'])",
			wantStdout: "csv three rows\n",
		},
		{
			name:       "preview with limit",
			source:     "p = datasets.preview('sample', limit=2)\nprint(p['headers'], len(p['rows']), p['rows'][1])",
			wantStdout: `["col1", "col2"] 2 ["2", "6"]` + "\n",
		},
		{
			name:       "preview default limit",
			source:     "print(len(datasets.preview('sample')['rows']))",
			wantStdout: "3\n",
		},
		{
			name:       "summary",
			source:     "s = datasets.summary('sample')\nprint(s['col1']['mean'], s['col2']['max'])",
			wantStdout: "2.0 7.0\n",
		},
		{
			name:    "unknown dataset",
			source:  "datasets.get('ghost')",
			wantErr: "unknown dataset ghost",
		},
		{
			name:    "unknown method",
			source:  "datasets.delete('sample')",
			wantErr: ErrorKindRuntime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(EngineOptions{})
			result := engine.Run(context.Background(), "s1", codeCell(tt.source), registry)
			if tt.wantErr != "" {
				if result.Success || !strings.Contains(result.ErrorMessage(), tt.wantErr) {
					t.Errorf("Run() = %+v, want error containing %q", result, tt.wantErr)
				}
				return
			}
			if !result.Success {
				t.Fatalf("Run() failed: %s", result.ErrorMessage())
			}
			if result.Stdout != tt.wantStdout {
				t.Errorf("Stdout = %q, want %q", result.Stdout, tt.wantStdout)
			}
		})
	}
}

func TestDatasetsModule_NotAVariable(t *testing.T) {
	registry, _ := newTestRegistry(t)
	engine := NewEngine(EngineOptions{})

	result := engine.Run(context.Background(), "s1", codeCell("rows = datasets.preview('sample')['rows']"), registry)
	if !result.Success {
		t.Fatalf("Run() failed: %s", result.ErrorMessage())
	}
	if len(result.Variables) != 1 || result.Variables[0] != "rows" {
		t.Errorf("Variables = %v, want [rows]", result.Variables)
	}
}

func TestDatasetsModule_NoProvider(t *testing.T) {
	engine := NewEngine(EngineOptions{})
	result := engine.Run(context.Background(), "s1", codeCell("datasets.names()"), nil)
	if result.Success || !strings.Contains(result.ErrorMessage(), "no dataset provider") {
		t.Errorf("Run() = %+v, want missing provider error", result)
	}
}

func TestDatasetsModule_ReboundEachRun(t *testing.T) {
	registry, _ := newTestRegistry(t)
	engine := NewEngine(EngineOptions{})
	ctx := context.Background()

	// A cell that shadows the name does not break later runs
	engine.Run(ctx, "s1", codeCell("datasets = 1"), registry)
	path := testutil.CreateDatasetFixture(t, "more.csv", testutil.SampleCSV)
	if _, err := registry.Register("more", path, ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	result := engine.Run(ctx, "s1", codeCell("print(len(datasets.names()))"), registry)
	if result.Stdout != "2\n" {
		t.Errorf("Stdout = %q, want 2", result.Stdout)
	}
}

func TestBuiltins_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "mean of empty", source: "mean([])"},
		{name: "mean of strings", source: "mean(['a'])"},
		{name: "abs of string", source: "abs('x')"},
		{name: "filter with non-callable", source: "filter(1, [1])"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewEngine(EngineOptions{}).Run(context.Background(), "s1", codeCell(tt.source), nil)
			if result.Success {
				t.Errorf("Run(%q) succeeded, want RuntimeError", tt.source)
			}
			if !strings.HasPrefix(result.ErrorMessage(), ErrorKindRuntime) {
				t.Errorf("Error = %q, want RuntimeError", result.ErrorMessage())
			}
		})
	}
}
