package internal

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// CellType identifies how a cell is treated when it is run
type CellType string

const (
	CellTypeCode     CellType = "code"
	CellTypeMarkdown CellType = "markdown"
	CellTypeText     CellType = "text"
)

// CellTypes lists every supported cell type in display order
var CellTypes = []CellType{CellTypeCode, CellTypeMarkdown, CellTypeText}

// ParseCellType validates a raw cell type string
func ParseCellType(raw string) (CellType, error) {
	switch CellType(raw) {
	case CellTypeCode, CellTypeMarkdown, CellTypeText:
		return CellType(raw), nil
	default:
		return "", &ValidationError{
			Op:     "parse cell type",
			Reason: fmt.Sprintf("unsupported cell type %q (supported: code, markdown, text)", raw),
		}
	}
}

const (
	// DefaultRole is assigned to collaborators added without an explicit role
	DefaultRole = "navigator"
	// DefaultDatasetFormat is the format tag used when none can be inferred
	DefaultDatasetFormat = "csv"

	defaultNotebookTitle = "Untitled Notebook"
	defaultSessionName   = "Session"
)

// ExecutionResult is the outcome of running a single cell
type ExecutionResult struct {
	Success   bool     `json:"success" yaml:"success"`
	Stdout    string   `json:"stdout" yaml:"stdout"`
	Error     *string  `json:"error" yaml:"error"`
	Duration  float64  `json:"duration" yaml:"duration"` // seconds
	Timestamp string   `json:"timestamp" yaml:"timestamp"`
	Variables []string `json:"variables" yaml:"variables"`
}

// ErrorMessage returns the error description or an empty string
func (r *ExecutionResult) ErrorMessage() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return *r.Error
}

// Clone returns a deep copy of the result
func (r *ExecutionResult) Clone() *ExecutionResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Error != nil {
		msg := *r.Error
		out.Error = &msg
	}
	out.Variables = slices.Clone(r.Variables)
	if out.Variables == nil {
		out.Variables = []string{}
	}
	return &out
}

func (r *ExecutionResult) UnmarshalJSON(data []byte) error {
	type alias ExecutionResult
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Variables == nil {
		raw.Variables = []string{}
	}
	*r = ExecutionResult(raw)
	return nil
}

// Cell is a single entry in a notebook
type Cell struct {
	ID         string           `json:"id" yaml:"id"`
	Type       CellType         `json:"cell_type" yaml:"cell_type"`
	Source     string           `json:"source" yaml:"source"`
	LastResult *ExecutionResult `json:"last_result,omitempty" yaml:"last_result,omitempty"`
}

// Clone returns a deep copy of the cell
func (c *Cell) Clone() *Cell {
	if c == nil {
		return nil
	}
	out := *c
	out.LastResult = c.LastResult.Clone()
	return &out
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	type alias Cell
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == "" {
		return fmt.Errorf("cell is missing an id")
	}
	if raw.Type == "" {
		raw.Type = CellTypeCode
	}
	*c = Cell(raw)
	return nil
}

// Notebook is an ordered collection of cells
type Notebook struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Cells       []*Cell `json:"cells" yaml:"cells"`
}

// FindCell returns the first cell with the given id
func (n *Notebook) FindCell(cellID string) (*Cell, bool) {
	for _, cell := range n.Cells {
		if cell.ID == cellID {
			return cell, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the notebook
func (n *Notebook) Clone() *Notebook {
	if n == nil {
		return nil
	}
	out := *n
	out.Cells = make([]*Cell, len(n.Cells))
	for i, cell := range n.Cells {
		out.Cells[i] = cell.Clone()
	}
	return &out
}

func (n *Notebook) UnmarshalJSON(data []byte) error {
	type alias Notebook
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == "" {
		return fmt.Errorf("notebook is missing an id")
	}
	if raw.Title == "" {
		raw.Title = defaultNotebookTitle
	}
	if raw.Cells == nil {
		raw.Cells = []*Cell{}
	}
	*n = Notebook(raw)
	return nil
}

// DatasetReference describes a dataset collaborators can share
type DatasetReference struct {
	Name        string `json:"name" yaml:"name"`
	Path        string `json:"path" yaml:"path"`
	Format      string `json:"format" yaml:"format"`
	Description string `json:"description" yaml:"description"`
}

// WorkspaceState is the persisted aggregate root
type WorkspaceState struct {
	Notebooks map[string]*Notebook         `json:"notebooks"`
	Sessions  map[string]*Session          `json:"sessions"`
	Datasets  map[string]*DatasetReference `json:"datasets"`
}

// NewWorkspaceState returns an empty state with initialized maps
func NewWorkspaceState() *WorkspaceState {
	return &WorkspaceState{
		Notebooks: make(map[string]*Notebook),
		Sessions:  make(map[string]*Session),
		Datasets:  make(map[string]*DatasetReference),
	}
}

func (s *WorkspaceState) UnmarshalJSON(data []byte) error {
	type alias WorkspaceState
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Notebooks == nil {
		raw.Notebooks = make(map[string]*Notebook)
	}
	if raw.Sessions == nil {
		raw.Sessions = make(map[string]*Session)
	}
	if raw.Datasets == nil {
		raw.Datasets = make(map[string]*DatasetReference)
	}
	*s = WorkspaceState(raw)
	return nil
}

// Validate checks the structural invariants of a loaded state
func (s *WorkspaceState) Validate() error {
	for key, notebook := range s.Notebooks {
		if notebook == nil || notebook.ID != key {
			return &ValidationError{Op: "validate state", Reason: fmt.Sprintf("notebook key %q does not match its id", key)}
		}
		seen := make(map[string]bool, len(notebook.Cells))
		for _, cell := range notebook.Cells {
			if seen[cell.ID] {
				return &ValidationError{Op: "validate state", Reason: fmt.Sprintf("notebook %s has duplicate cell id %s", key, cell.ID)}
			}
			seen[cell.ID] = true
			if _, err := ParseCellType(string(cell.Type)); err != nil {
				return err
			}
		}
	}
	for key, session := range s.Sessions {
		if session == nil || session.ID != key {
			return &ValidationError{Op: "validate state", Reason: fmt.Sprintf("session key %q does not match its id", key)}
		}
		if _, ok := s.Notebooks[session.NotebookID]; !ok {
			return &ValidationError{Op: "validate state", Reason: fmt.Sprintf("session %s is bound to unknown notebook %s", key, session.NotebookID)}
		}
	}
	for key, dataset := range s.Datasets {
		if dataset == nil || dataset.Name != key {
			return &ValidationError{Op: "validate state", Reason: fmt.Sprintf("dataset key %q does not match its name", key)}
		}
	}
	return nil
}

// Clone returns a deep copy of the state
func (s *WorkspaceState) Clone() *WorkspaceState {
	out := NewWorkspaceState()
	for id, notebook := range s.Notebooks {
		out.Notebooks[id] = notebook.Clone()
	}
	for id, session := range s.Sessions {
		out.Sessions[id] = session.Clone()
	}
	for name, dataset := range s.Datasets {
		ref := *dataset
		out.Datasets[name] = &ref
	}
	return out
}

// newID allocates an opaque unique identifier
func newID() string {
	return uuid.NewString()
}

// now returns the current UTC instant in RFC 3339 form
func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
