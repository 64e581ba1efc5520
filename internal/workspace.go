package internal

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"pkt.systems/pslog"
)

// Options configures a Workspace
type Options struct {
	Store    Store
	AutoSave bool
	Engine   EngineOptions
	// Datasets overrides the built-in registry; its state is not persisted
	Datasets DatasetProvider
	Logger   pslog.Logger
}

// RunRequest names one cell run for RunCells
type RunRequest struct {
	SessionID  string `json:"session_id"`
	NotebookID string `json:"notebook_id"`
	CellID     string `json:"cell_id"`
}

// Workspace mediates every mutation of the workspace state. When auto-save fails the
// mutation stays applied in memory and the PersistenceError is returned with the result.
type Workspace struct {
	store    Store
	autoSave bool
	engine   *Engine
	registry *DatasetRegistry
	datasets DatasetProvider
	log      pslog.Logger

	mu    sync.Mutex // guards state and snapshot writes
	state *WorkspaceState
}

// Open loads the persisted state from opts.Store and returns a ready workspace
func Open(ctx context.Context, opts Options) (*Workspace, error) {
	if opts.Store == nil {
		return nil, &ValidationError{Op: "open workspace", Reason: "a store is required"}
	}
	state, err := opts.Store.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	w := &Workspace{
		store:    opts.Store,
		autoSave: opts.AutoSave,
		engine:   NewEngine(opts.Engine),
		state:    state,
		log:      log.With("store", opts.Store.Location()),
	}
	if opts.Datasets != nil {
		w.datasets = opts.Datasets
	} else {
		w.registry = NewDatasetRegistry(state.Datasets)
		w.datasets = w.registry
	}
	w.log.Debug("workspace opened", "notebooks", len(state.Notebooks), "sessions", len(state.Sessions), "datasets", len(state.Datasets))
	return w, nil
}

// Close releases the underlying store
func (w *Workspace) Close() error {
	return w.store.Close()
}

// CreateNotebook adds an empty notebook
func (w *Workspace) CreateNotebook(ctx context.Context, title, description string) (*Notebook, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	notebook := &Notebook{
		ID:          w.freshNotebookID(),
		Title:       title,
		Description: description,
		Cells:       []*Cell{},
	}
	w.state.Notebooks[notebook.ID] = notebook
	w.log.Debug("notebook created", "notebook", notebook.ID)
	return notebook.Clone(), w.maybeSave(ctx)
}

// AddCell appends a cell to a notebook
func (w *Workspace) AddCell(ctx context.Context, notebookID string, cellType CellType, source string) (*Cell, error) {
	if _, err := ParseCellType(string(cellType)); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	notebook, err := w.notebook(notebookID)
	if err != nil {
		return nil, err
	}
	cell := &Cell{ID: freshCellID(notebook), Type: cellType, Source: source}
	notebook.Cells = append(notebook.Cells, cell)
	w.log.Debug("cell added", "notebook", notebookID, "cell", cell.ID, "type", cellType)
	return cell.Clone(), w.maybeSave(ctx)
}

// UpdateCell replaces a cell's source. Any previous result is kept until the cell is run again.
func (w *Workspace) UpdateCell(ctx context.Context, notebookID, cellID, source string) (*Cell, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cell, err := w.cell(notebookID, cellID)
	if err != nil {
		return nil, err
	}
	cell.Source = source
	w.log.Debug("cell updated", "notebook", notebookID, "cell", cellID)
	return cell.Clone(), w.maybeSave(ctx)
}

// CreateSession binds a new session to an existing notebook
func (w *Workspace) CreateSession(ctx context.Context, name, notebookID string, seeds []CollaboratorSeed) (*Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.notebook(notebookID); err != nil {
		return nil, err
	}
	session := &Session{
		ID:            w.freshSessionID(),
		Name:          name,
		NotebookID:    notebookID,
		Collaborators: make([]*Collaborator, 0, len(seeds)),
		Chat:          []*ChatMessage{},
		Checkpoints:   []string{},
	}
	for _, seed := range seeds {
		session.Collaborators = append(session.Collaborators, newCollaborator(seed.Name, seed.Role))
	}
	w.state.Sessions[session.ID] = session
	w.log.Debug("session created", "session", session.ID, "notebook", notebookID, "collaborators", len(seeds))
	return session.Clone(), w.maybeSave(ctx)
}

// AddCollaborator appends a collaborator to a session
func (w *Workspace) AddCollaborator(ctx context.Context, sessionID, name, role string) (*Collaborator, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	session, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	collaborator := newCollaborator(name, role)
	session.Collaborators = append(session.Collaborators, collaborator)
	w.log.Debug("collaborator added", "session", sessionID, "collaborator", collaborator.ID)
	copied := *collaborator
	return &copied, w.maybeSave(ctx)
}

// PostMessage appends a chat message to a session
func (w *Workspace) PostMessage(ctx context.Context, sessionID, author, content string) (*ChatMessage, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	session, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	message := &ChatMessage{Author: author, Content: content, Timestamp: now()}
	session.Chat = append(session.Chat, message)
	w.log.Debug("message posted", "session", sessionID, "author", author)
	copied := *message
	return &copied, w.maybeSave(ctx)
}

// RunCell executes a cell of the session's notebook and records the result
func (w *Workspace) RunCell(ctx context.Context, sessionID, notebookID, cellID string) (*Cell, error) {
	w.mu.Lock()
	snapshot, err := w.runnableCell(sessionID, notebookID, cellID)
	w.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return w.runChecked(ctx, sessionID, notebookID, snapshot)
}

// runnableCell checks the session binding and returns a copy of the cell to run.
// w.mu must be held.
func (w *Workspace) runnableCell(sessionID, notebookID, cellID string) (*Cell, error) {
	session, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	if session.NotebookID != notebookID {
		return nil, &ValidationError{
			Op:     "run cell",
			Reason: fmt.Sprintf("session %s is not attached to notebook %s", sessionID, notebookID),
		}
	}
	cell, err := w.cell(notebookID, cellID)
	if err != nil {
		return nil, err
	}
	return cell.Clone(), nil
}

// runChecked evaluates a cell that passed runnableCell and records the outcome
func (w *Workspace) runChecked(ctx context.Context, sessionID, notebookID string, snapshot *Cell) (*Cell, error) {
	// Evaluate outside the state lock so other sessions keep going
	result := w.engine.Run(ctx, sessionID, snapshot, w.datasets)

	w.mu.Lock()
	defer w.mu.Unlock()
	// Cells and sessions are never removed, so both lookups still succeed
	cell, err := w.cell(notebookID, snapshot.ID)
	if err != nil {
		return nil, err
	}
	session, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	cell.LastResult = result
	session.Checkpoints = append(session.Checkpoints, Checkpoint(cell.ID, result.Timestamp))
	w.log.Debug("cell run", "session", sessionID, "notebook", notebookID, "cell", cell.ID,
		"success", result.Success, "duration", result.Duration)
	return cell.Clone(), w.maybeSave(ctx)
}

// RunCells runs a batch of cells. Every request is checked before anything runs, so
// a bad request leaves the workspace untouched. Sessions run in parallel; requests
// for one session run in request order. Results come back in request order. A save
// failure does not stop the batch; the first one is returned with the results.
func (w *Workspace) RunCells(ctx context.Context, requests []RunRequest) ([]*Cell, error) {
	snapshots := make([]*Cell, len(requests))
	var order []string
	bySession := make(map[string][]int)

	w.mu.Lock()
	for i, req := range requests {
		cell, err := w.runnableCell(req.SessionID, req.NotebookID, req.CellID)
		if err != nil {
			w.mu.Unlock()
			return nil, fmt.Errorf("run %s/%s: %w", req.NotebookID, req.CellID, err)
		}
		snapshots[i] = cell
		if _, seen := bySession[req.SessionID]; !seen {
			order = append(order, req.SessionID)
		}
		bySession[req.SessionID] = append(bySession[req.SessionID], i)
	}
	w.mu.Unlock()

	cells := make([]*Cell, len(requests))
	var g errgroup.Group
	for _, sessionID := range order {
		g.Go(func() error {
			var first error
			for _, i := range bySession[sessionID] {
				req := requests[i]
				cell, err := w.runChecked(ctx, req.SessionID, req.NotebookID, snapshots[i])
				if err != nil && first == nil {
					first = fmt.Errorf("run %s/%s: %w", req.NotebookID, req.CellID, err)
				}
				cells[i] = cell
			}
			return first
		})
	}
	err := g.Wait()
	return cells, err
}

// ResetSession discards the execution context of a session
func (w *Workspace) ResetSession(sessionID string) error {
	w.mu.Lock()
	_, err := w.session(sessionID)
	w.mu.Unlock()
	if err != nil {
		return err
	}
	w.engine.Reset(sessionID)
	w.log.Debug("execution context reset", "session", sessionID)
	return nil
}

// RegisterDataset records a dataset with the provider and persists the registry
func (w *Workspace) RegisterDataset(ctx context.Context, name, path, description string) (*DatasetReference, error) {
	ref, err := w.datasets.Register(name, path, description)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.log.Debug("dataset registered", "dataset", name, "path", ref.Path)
	return ref, w.maybeSave(ctx)
}

// PreviewDataset returns the first rows of a dataset
func (w *Workspace) PreviewDataset(name string, limit int) (*Preview, error) {
	return w.datasets.Preview(name, limit)
}

// DatasetSummary returns per-column statistics of a dataset
func (w *Workspace) DatasetSummary(name string) (map[string]ColumnSummary, error) {
	return w.datasets.Summary(name)
}

// ListDatasets returns all registered datasets
func (w *Workspace) ListDatasets() []*DatasetReference {
	return w.datasets.List()
}

// ListNotebooks yields copies of the notebooks present when iteration starts
func (w *Workspace) ListNotebooks() iter.Seq[*Notebook] {
	return func(yield func(*Notebook) bool) {
		w.mu.Lock()
		notebooks := make([]*Notebook, 0, len(w.state.Notebooks))
		for _, notebook := range w.state.Notebooks {
			notebooks = append(notebooks, notebook.Clone())
		}
		w.mu.Unlock()

		for _, notebook := range notebooks {
			if !yield(notebook) {
				return
			}
		}
	}
}

// ListSessions yields copies of the sessions present when iteration starts
func (w *Workspace) ListSessions() iter.Seq[*Session] {
	return func(yield func(*Session) bool) {
		w.mu.Lock()
		sessions := make([]*Session, 0, len(w.state.Sessions))
		for _, session := range w.state.Sessions {
			sessions = append(sessions, session.Clone())
		}
		w.mu.Unlock()

		for _, session := range sessions {
			if !yield(session) {
				return
			}
		}
	}
}

// Notebook returns a copy of a notebook
func (w *Workspace) Notebook(notebookID string) (*Notebook, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	notebook, err := w.notebook(notebookID)
	if err != nil {
		return nil, err
	}
	return notebook.Clone(), nil
}

// Session returns a copy of a session
func (w *Workspace) Session(sessionID string) (*Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	session, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// Snapshot returns a deep copy of the full state, registry included
func (w *Workspace) Snapshot() *WorkspaceState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncDatasets()
	return w.state.Clone()
}

// Save writes the full state regardless of AutoSave
func (w *Workspace) Save(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.save(ctx)
}

// Engine exposes the execution engine for diagnostics
func (w *Workspace) Engine() *Engine {
	return w.engine
}

func (w *Workspace) maybeSave(ctx context.Context) error {
	if !w.autoSave {
		return nil
	}
	// The mutation is already applied in memory; write it even if ctx is done
	return w.save(context.WithoutCancel(ctx))
}

// save must be called with w.mu held
func (w *Workspace) save(ctx context.Context) error {
	w.syncDatasets()
	if err := w.store.Save(ctx, w.state); err != nil {
		w.log.Warn("snapshot not saved", "err", err)
		return err
	}
	return nil
}

func (w *Workspace) syncDatasets() {
	if w.registry != nil {
		w.state.Datasets = w.registry.Snapshot()
	}
}

func (w *Workspace) notebook(notebookID string) (*Notebook, error) {
	notebook, ok := w.state.Notebooks[notebookID]
	if !ok {
		return nil, notFound("notebook", notebookID)
	}
	return notebook, nil
}

func (w *Workspace) session(sessionID string) (*Session, error) {
	session, ok := w.state.Sessions[sessionID]
	if !ok {
		return nil, notFound("session", sessionID)
	}
	return session, nil
}

func (w *Workspace) cell(notebookID, cellID string) (*Cell, error) {
	notebook, err := w.notebook(notebookID)
	if err != nil {
		return nil, err
	}
	cell, ok := notebook.FindCell(cellID)
	if !ok {
		return nil, notFound("cell", cellID)
	}
	return cell, nil
}

func (w *Workspace) freshNotebookID() string {
	for {
		id := newID()
		if _, taken := w.state.Notebooks[id]; !taken {
			return id
		}
	}
}

func (w *Workspace) freshSessionID() string {
	for {
		id := newID()
		if _, taken := w.state.Sessions[id]; !taken {
			return id
		}
	}
}

func freshCellID(notebook *Notebook) string {
	for {
		id := newID()
		if _, taken := notebook.FindCell(id); !taken {
			return id
		}
	}
}

func newCollaborator(name, role string) *Collaborator {
	role = strings.TrimSpace(role)
	if role == "" {
		role = DefaultRole
	}
	return &Collaborator{ID: newID(), Name: name, Role: role}
}

// ParseCollaboratorSeed splits "name:role"; a bare name gets the default role
func ParseCollaboratorSeed(raw string) CollaboratorSeed {
	name, role, ok := strings.Cut(raw, ":")
	if !ok {
		return CollaboratorSeed{Name: raw, Role: DefaultRole}
	}
	return CollaboratorSeed{Name: name, Role: role}
}
