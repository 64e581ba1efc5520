package internal

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseCellType(t *testing.T) {
	tests := []struct {
		raw     string
		want    CellType
		wantErr bool
	}{
		{raw: "code", want: CellTypeCode},
		{raw: "markdown", want: CellTypeMarkdown},
		{raw: "text", want: CellTypeText},
		{raw: "python", wantErr: true},
		{raw: "Code", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseCellType(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCellType(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ParseCellType(%q) error = %v, want ValidationError", tt.raw, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseCellType(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCell_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType CellType
		wantErr  bool
	}{
		{name: "explicit type", input: `{"id":"c1","cell_type":"markdown","source":"# hi"}`, wantType: CellTypeMarkdown},
		{name: "missing type defaults to code", input: `{"id":"c1","source":"x = 1"}`, wantType: CellTypeCode},
		{name: "missing id", input: `{"cell_type":"code","source":"x = 1"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cell Cell
			err := json.Unmarshal([]byte(tt.input), &cell)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cell.Type != tt.wantType {
				t.Errorf("Cell.Type = %v, want %v", cell.Type, tt.wantType)
			}
		})
	}
}

func TestNotebook_UnmarshalJSONDefaults(t *testing.T) {
	var notebook Notebook
	if err := json.Unmarshal([]byte(`{"id":"nb1"}`), &notebook); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if notebook.Title != "Untitled Notebook" {
		t.Errorf("Notebook.Title = %q, want %q", notebook.Title, "Untitled Notebook")
	}
	if notebook.Cells == nil || len(notebook.Cells) != 0 {
		t.Errorf("Notebook.Cells = %v, want empty non-nil slice", notebook.Cells)
	}
}

func TestSession_UnmarshalJSONDefaults(t *testing.T) {
	var session Session
	if err := json.Unmarshal([]byte(`{"id":"s1","notebook_id":"nb1"}`), &session); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if session.Name != "Session" {
		t.Errorf("Session.Name = %q, want %q", session.Name, "Session")
	}
	if session.Collaborators == nil || session.Chat == nil || session.Checkpoints == nil {
		t.Errorf("Session lists must default to empty, got %+v", session)
	}

	if err := json.Unmarshal([]byte(`{"id":"s1"}`), &session); err == nil {
		t.Error("Unmarshal() without notebook_id should fail")
	}
}

func TestExecutionResult_JSONShape(t *testing.T) {
	result := CreateTestResult("42\n", "value")
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"success", "stdout", "error", "duration", "timestamp", "variables"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("ExecutionResult JSON is missing %q: %s", key, data)
		}
	}
	if raw["error"] != nil {
		t.Errorf("successful result error = %v, want null", raw["error"])
	}

	var decoded ExecutionResult
	if err := json.Unmarshal([]byte(`{"success":true,"stdout":"","error":null,"duration":0,"timestamp":"t"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Variables == nil {
		t.Error("ExecutionResult.Variables should default to an empty list")
	}
}

func TestWorkspaceState_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *WorkspaceState)
		wantErr bool
	}{
		{name: "consistent", mutate: func(s *WorkspaceState) {}},
		{
			name: "notebook key mismatch",
			mutate: func(s *WorkspaceState) {
				s.Notebooks["other"] = CreateTestNotebook("nb2", "Mismatch")
			},
			wantErr: true,
		},
		{
			name: "duplicate cell id",
			mutate: func(s *WorkspaceState) {
				nb := s.Notebooks["nb1"]
				nb.Cells = append(nb.Cells, &Cell{ID: nb.Cells[0].ID, Type: CellTypeCode})
			},
			wantErr: true,
		},
		{
			name: "unknown cell type",
			mutate: func(s *WorkspaceState) {
				s.Notebooks["nb1"].Cells[0].Type = "sql"
			},
			wantErr: true,
		},
		{
			name: "session bound to missing notebook",
			mutate: func(s *WorkspaceState) {
				s.Sessions["s2"] = CreateTestSession("s2", "missing")
			},
			wantErr: true,
		},
		{
			name: "dataset key mismatch",
			mutate: func(s *WorkspaceState) {
				s.Datasets["sales"] = &DatasetReference{Name: "revenue", Path: "/data/revenue.csv", Format: "csv"}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := CreateTestState()
			tt.mutate(state)
			err := state.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestWorkspaceState_CloneIsDeep(t *testing.T) {
	state := CreateTestState()
	state.Datasets["sales"] = &DatasetReference{Name: "sales", Path: "/data/sales.csv", Format: "csv"}

	clone := state.Clone()
	if !reflect.DeepEqual(state, clone) {
		t.Fatal("Clone() is not equal to the original")
	}

	clone.Notebooks["nb1"].Cells[0].Source = "changed"
	clone.Notebooks["nb1"].Cells[0].LastResult.Variables[0] = "changed"
	clone.Sessions["s1"].Collaborators[0].Role = "changed"
	clone.Sessions["s1"].Checkpoints = append(clone.Sessions["s1"].Checkpoints, "x")
	clone.Datasets["sales"].Path = "changed"

	if state.Notebooks["nb1"].Cells[0].Source == "changed" ||
		state.Notebooks["nb1"].Cells[0].LastResult.Variables[0] == "changed" ||
		state.Sessions["s1"].Collaborators[0].Role == "changed" ||
		len(state.Sessions["s1"].Checkpoints) != 0 ||
		state.Datasets["sales"].Path == "changed" {
		t.Error("mutating the clone changed the original")
	}
}

func TestCheckpoint(t *testing.T) {
	if got, want := Checkpoint("c1", "2024-01-01T00:00:00Z"), "c1:2024-01-01T00:00:00Z"; got != want {
		t.Errorf("Checkpoint() = %q, want %q", got, want)
	}
}

func TestParseCollaboratorSeed(t *testing.T) {
	tests := []struct {
		raw  string
		want CollaboratorSeed
	}{
		{raw: "Ada:driver", want: CollaboratorSeed{Name: "Ada", Role: "driver"}},
		{raw: "Grace", want: CollaboratorSeed{Name: "Grace", Role: DefaultRole}},
		{raw: "Linus:", want: CollaboratorSeed{Name: "Linus", Role: ""}},
	}
	for _, tt := range tests {
		if got := ParseCollaboratorSeed(tt.raw); got != tt.want {
			t.Errorf("ParseCollaboratorSeed(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}
