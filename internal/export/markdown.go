package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/pairide/internal"
)

// MarkdownExporter exports notebooks in Markdown format
type MarkdownExporter struct{}

// Export exports a notebook to Markdown format
func (e *MarkdownExporter) Export(notebook *internal.Notebook, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", notebook.Title)

	if notebook.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", notebook.Description)
	}
	_, _ = fmt.Fprintf(w, "**Notebook:** %s  \n", notebook.ID)
	_, _ = fmt.Fprintf(w, "**Cells:** %d\n\n", len(notebook.Cells))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, cell := range notebook.Cells {
		switch cell.Type {
		case internal.CellTypeMarkdown:
			_, _ = fmt.Fprintf(w, "%s\n\n", cell.Source)
		case internal.CellTypeText:
			_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(cell.Source))
		case internal.CellTypeCode:
			_, _ = fmt.Fprintf(w, "```starlark\n%s\n```\n\n", strings.TrimRight(cell.Source, "\n"))
			writeResult(w, cell.LastResult)
		}

		// Add horizontal rule after each cell (except the last one)
		if i < len(notebook.Cells)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func writeResult(w io.Writer, result *internal.ExecutionResult) {
	if result == nil {
		return
	}
	status := "ok"
	if !result.Success {
		status = "failed"
	}
	_, _ = fmt.Fprintf(w, "_Run %s at %s in %.3fs_\n\n", status, result.Timestamp, result.Duration)
	if result.Stdout != "" {
		_, _ = fmt.Fprintf(w, "```text\n%s\n```\n\n", strings.TrimRight(result.Stdout, "\n"))
	}
	if msg := result.ErrorMessage(); msg != "" {
		_, _ = fmt.Fprintf(w, "> **Error:** %s\n\n", msg)
	}
	if len(result.Variables) > 0 {
		_, _ = fmt.Fprintf(w, "**Variables:** %s\n\n", strings.Join(result.Variables, ", "))
	}
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			// Escape markdown syntax outside code blocks
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
