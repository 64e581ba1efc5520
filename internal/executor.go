package internal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Error kinds reported in ExecutionResult.Error as "<kind>: <message>"
const (
	ErrorKindSyntax    = "SyntaxError"
	ErrorKindName      = "NameError"
	ErrorKindRuntime   = "RuntimeError"
	ErrorKindCancelled = "Cancelled"
	ErrorKindStepLimit = "StepLimitExceeded"
)

const stepLimitReason = "too many steps"

// fileOptions lets notebook cells use top-level loops and rebind names from earlier cells
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// EngineOptions bounds code execution
type EngineOptions struct {
	// MaxSteps caps interpreter steps per run; zero means unlimited
	MaxSteps uint64
	// Timeout caps wall-clock time per run; zero means no deadline
	Timeout time.Duration
}

// executionContext is the variable environment of one session
type executionContext struct {
	mu      sync.Mutex // serializes runs within a session
	globals starlark.StringDict
}

// Engine runs cells in per-session execution contexts
type Engine struct {
	opts EngineOptions

	mu       sync.Mutex
	contexts map[string]*executionContext
}

// NewEngine creates an engine with no contexts
func NewEngine(opts EngineOptions) *Engine {
	return &Engine{
		opts:     opts,
		contexts: make(map[string]*executionContext),
	}
}

// Run executes cell within the context of sessionID. Failures are reported in the
// result, never returned.
func (e *Engine) Run(ctx context.Context, sessionID string, cell *Cell, datasets DatasetProvider) *ExecutionResult {
	switch cell.Type {
	case CellTypeCode:
		return e.runCode(ctx, sessionID, cell.Source, datasets)
	case CellTypeMarkdown, CellTypeText:
		return &ExecutionResult{
			Success:   true,
			Stdout:    cell.Source,
			Duration:  0,
			Timestamp: now(),
			Variables: []string{},
		}
	default:
		msg := fmt.Sprintf("%s: unsupported cell type %q", ErrorKindRuntime, cell.Type)
		return &ExecutionResult{Error: &msg, Timestamp: now(), Variables: []string{}}
	}
}

// Reset discards the context for sessionID, if any
func (e *Engine) Reset(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.contexts, sessionID)
}

// Contexts reports how many sessions currently hold a context
func (e *Engine) Contexts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.contexts)
}

func (e *Engine) context(sessionID string) *executionContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	ec, ok := e.contexts[sessionID]
	if !ok {
		ec = &executionContext{globals: allowedBuiltins()}
		e.contexts[sessionID] = ec
		LogDebug("execution context created", "session", sessionID)
	}
	return ec
}

func (e *Engine) runCode(ctx context.Context, sessionID, source string, datasets DatasetProvider) *ExecutionResult {
	ec := e.context(sessionID)
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	var stdout strings.Builder
	thread := &starlark.Thread{
		Name: "session:" + sessionID,
		Print: func(_ *starlark.Thread, msg string) {
			stdout.WriteString(msg)
			stdout.WriteByte('\n')
		},
	}
	if e.opts.MaxSteps > 0 {
		thread.SetMaxExecutionSteps(e.opts.MaxSteps)
	}
	ec.globals[DatasetsName] = newDatasetsModule(datasets)

	start := time.Now()
	err := execChunk(ctx, thread, source, ec.globals)
	duration := time.Since(start).Seconds()

	result := &ExecutionResult{
		Success:   err == nil,
		Stdout:    stdout.String(),
		Duration:  duration,
		Variables: variableNames(ec.globals),
		Timestamp: now(),
	}
	if err != nil {
		msg := describeError(ctx, err)
		result.Error = &msg
		LogDebug("cell failed", "session", sessionID, "error", msg)
	}
	return result
}

func execChunk(ctx context.Context, thread *starlark.Thread, source string, globals starlark.StringDict) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := fileOptions.Parse("<cell>", source, 0)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	return starlark.ExecREPLChunk(f, thread, globals)
}

// describeError renders err as "<kind>: <message>"
func describeError(ctx context.Context, err error) string {
	var syntaxErr syntax.Error
	var resolveErrs resolve.ErrorList
	var evalErr *starlark.EvalError

	switch {
	case ctx.Err() != nil:
		return fmt.Sprintf("%s: %v", ErrorKindCancelled, ctx.Err())
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("%s: %s (line %d)", ErrorKindSyntax, syntaxErr.Msg, syntaxErr.Pos.Line)
	case errors.As(err, &resolveErrs) && len(resolveErrs) > 0:
		first := resolveErrs[0]
		return fmt.Sprintf("%s: %s (line %d)", ErrorKindName, first.Msg, first.Pos.Line)
	case errors.As(err, &evalErr):
		if strings.Contains(evalErr.Msg, stepLimitReason) {
			return fmt.Sprintf("%s: %s", ErrorKindStepLimit, evalErr.Msg)
		}
		return fmt.Sprintf("%s: %s", ErrorKindRuntime, evalErr.Msg)
	default:
		return fmt.Sprintf("%s: %v", ErrorKindRuntime, err)
	}
}

// variableNames lists data bindings. Values are filtered by kind, not name, so a cell
// that rebinds a builtin name to data still reports it.
func variableNames(globals starlark.StringDict) []string {
	names := make([]string, 0, len(globals))
	for name, value := range globals {
		switch value.(type) {
		case starlark.Callable, *datasetsModule:
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
