package internal

// CreateTestNotebook creates a notebook whose code cells hold the given sources
func CreateTestNotebook(id, title string, sources ...string) *Notebook {
	notebook := &Notebook{
		ID:          id,
		Title:       title,
		Description: "test notebook",
		Cells:       make([]*Cell, 0, len(sources)),
	}
	for i, source := range sources {
		notebook.Cells = append(notebook.Cells, &Cell{
			ID:     CreateTestCellID(id, i),
			Type:   CellTypeCode,
			Source: source,
		})
	}
	return notebook
}

// CreateTestCellID returns the id CreateTestNotebook gives to the cell at index
func CreateTestCellID(notebookID string, index int) string {
	return notebookID + "-cell-" + string(rune('a'+index))
}

// CreateTestSession creates a session bound to notebookID with a driver and a navigator
func CreateTestSession(id, notebookID string) *Session {
	return &Session{
		ID:         id,
		Name:       "Pairing",
		NotebookID: notebookID,
		Collaborators: []*Collaborator{
			{ID: id + "-ada", Name: "Ada", Role: "driver"},
			{ID: id + "-grace", Name: "Grace", Role: DefaultRole},
		},
		Chat: []*ChatMessage{
			{Author: "Ada", Content: "Let's look at the data", Timestamp: "2024-01-01T00:00:00Z"},
		},
		Checkpoints: []string{},
	}
}

// CreateTestResult creates a successful result with the given output
func CreateTestResult(stdout string, variables ...string) *ExecutionResult {
	if variables == nil {
		variables = []string{}
	}
	return &ExecutionResult{
		Success:   true,
		Stdout:    stdout,
		Duration:  0.001,
		Timestamp: "2024-01-01T00:00:01Z",
		Variables: variables,
	}
}

// CreateTestState creates a consistent state with one notebook, one session and no datasets
func CreateTestState() *WorkspaceState {
	state := NewWorkspaceState()
	notebook := CreateTestNotebook("nb1", "Exploration", "value = 21 * 2\nprint(value)", "print(value + 1)")
	notebook.Cells = append(notebook.Cells, &Cell{ID: "nb1-notes", Type: CellTypeMarkdown, Source: "# Notes"})
	notebook.Cells[0].LastResult = CreateTestResult("42\n", "value")
	state.Notebooks[notebook.ID] = notebook
	state.Sessions["s1"] = CreateTestSession("s1", notebook.ID)
	return state
}
