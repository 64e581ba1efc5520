package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// ProgressStep is one unit of a multi-step run. Fn reports whether the step
// succeeded; a returned error aborts the remaining steps.
type ProgressStep struct {
	Message string
	Fn      func() (bool, error)
}

// ShowProgressWithSteps runs steps in order. On a terminal each step gets a spinner
// and a ✓/✗ mark on w; otherwise steps are only logged at debug level.
func ShowProgressWithSteps(ctx context.Context, w io.Writer, steps []ProgressStep) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := fmt.Sprintf("[%d/%d] %s", i+1, len(steps), step.Message)
		if !isTerminal(w) {
			ok, err := step.Fn()
			if err != nil {
				return fmt.Errorf("%s: %w", step.Message, err)
			}
			LogDebug("step done", "step", msg, "success", ok)
			continue
		}
		if err := showProgressSimple(ctx, w, msg, step.Fn); err != nil {
			return fmt.Errorf("%s: %w", step.Message, err)
		}
	}
	return nil
}

// showProgressSimple uses a simple text-based spinner
func showProgressSimple(ctx context.Context, w io.Writer, message string, fn func() (bool, error)) error {
	spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", progressStyle.Render(spinnerChars[i%len(spinnerChars)]), message)
			}
		}
	}()

	ok, err := fn()
	close(stop)
	wg.Wait()

	mark := successStyle.Render("✓")
	if err != nil || !ok {
		mark = errorStyle.Render("✗")
	}
	fmt.Fprintf(w, "\r%s %s\n", mark, message)
	return err
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
