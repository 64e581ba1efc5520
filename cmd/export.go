package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iksnae/pairide/internal"
	"github.com/iksnae/pairide/internal/export"
	"github.com/spf13/cobra"
)

var (
	format     string
	outputFile string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <notebook-id>",
	Short: "Export a notebook to file or stdout",
	Long: `Export a notebook, including the last result of every cell, to one of
the supported formats (json, jsonl, yaml, md).

Without --out the export is written to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			notebook, err := ws.Notebook(args[0])
			if err != nil {
				return err
			}

			if outputFile == "" {
				return exporter.Export(notebook, cmd.OutOrStdout())
			}

			path := outputFile
			if filepath.Ext(path) == "" {
				path = path + "." + exporter.Extension()
			}
			if err := writeExport(path, func(w io.Writer) error { return exporter.Export(notebook, w) }); err != nil {
				return &internal.ExportError{Format: format, Path: path, Err: err}
			}
			internal.LogInfo("notebook exported", "notebook", notebook.ID, "path", path)
			return printJSON(cmd, map[string]string{
				"status":      "exported",
				"notebook_id": notebook.ID,
				"path":        path,
			})
		})
	},
}

func writeExport(path string, fn func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to export: %w", err)
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "json", "Export format (json, jsonl, yaml, md)")
	exportCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output file (extension added when missing)")
}
