package export

import (
	"io"

	"github.com/iksnae/pairide/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports notebooks in YAML format
type YAMLExporter struct{}

// Export exports a notebook to YAML format
func (e *YAMLExporter) Export(notebook *internal.Notebook, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(notebook)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
