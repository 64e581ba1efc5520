package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/pairide/internal"
)

// JSONExporter exports notebooks in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a notebook to JSON format
func (e *JSONExporter) Export(notebook *internal.Notebook, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(notebook)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
