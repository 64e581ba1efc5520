package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/pairide/internal"
)

// JSONLExporter exports notebooks in JSONL format (one cell per line)
type JSONLExporter struct{}

// Export exports a notebook to JSONL format
func (e *JSONLExporter) Export(notebook *internal.Notebook, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, cell := range notebook.Cells {
		obj := map[string]interface{}{
			"notebook_id": notebook.ID,
			"index":       i,
			"id":          cell.ID,
			"cell_type":   cell.Type,
			"source":      cell.Source,
		}

		// Only cells that were run carry a result
		if cell.LastResult != nil {
			obj["last_result"] = cell.LastResult
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode cell: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
