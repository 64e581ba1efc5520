package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/iksnae/pairide/internal"
	"github.com/spf13/cobra"
)

var (
	initTitle       string
	initDescription string
	initWriteConfig bool

	notebookDescription string
	cellSource          string
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a workspace with a first notebook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *internal.Workspace, cfg internal.Config) error {
			if initWriteConfig {
				path := filepath.Join(filepath.Dir(cfg.StatePath), "config.yaml")
				if err := internal.WriteConfig(path, cfg); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				internal.LogInfo("config written", "path", path)
			}
			notebook, err := ws.CreateNotebook(cmd.Context(), initTitle, initDescription)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"notebook_id": notebook.ID})
		})
	},
}

// newNotebookCmd represents the new-notebook command
var newNotebookCmd = &cobra.Command{
	Use:   "new-notebook <title>",
	Short: "Create a notebook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			notebook, err := ws.CreateNotebook(cmd.Context(), args[0], notebookDescription)
			if err != nil {
				return err
			}
			return printJSON(cmd, notebook)
		})
	},
}

// addCellCmd represents the add-cell command
var addCellCmd = &cobra.Command{
	Use:   "add-cell <notebook-id> <code|markdown|text>",
	Short: "Append a cell to a notebook",
	Long: `Append a cell to a notebook.

The cell source is taken from --source, or read from stdin when --source is omitted.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cellType, err := internal.ParseCellType(args[1])
		if err != nil {
			return err
		}
		source, err := readSource(cmd, cellSource, cmd.Flags().Changed("source"))
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			cell, err := ws.AddCell(cmd.Context(), args[0], cellType, source)
			if err != nil {
				return err
			}
			return printJSON(cmd, cell)
		})
	},
}

// updateCellCmd represents the update-cell command
var updateCellCmd = &cobra.Command{
	Use:   "update-cell <notebook-id> <cell-id>",
	Short: "Replace the source of a cell",
	Long: `Replace the source of a cell. The previous run result is kept until the cell is run again.

The new source is taken from --source, or read from stdin when --source is omitted.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(cmd, cellSource, cmd.Flags().Changed("source"))
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			cell, err := ws.UpdateCell(cmd.Context(), args[0], args[1], source)
			if err != nil {
				return err
			}
			return printJSON(cmd, cell)
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newNotebookCmd)
	rootCmd.AddCommand(addCellCmd)
	rootCmd.AddCommand(updateCellCmd)

	initCmd.Flags().StringVar(&initTitle, "title", "Shared notebook", "Title of the first notebook")
	initCmd.Flags().StringVar(&initDescription, "description", "Scratchpad for data experiments", "Description of the first notebook")
	initCmd.Flags().BoolVar(&initWriteConfig, "write-config", false, "Write the resolved config next to the state file")

	newNotebookCmd.Flags().StringVar(&notebookDescription, "description", "", "Notebook description")

	addCellCmd.Flags().StringVar(&cellSource, "source", "", "Inline source content; omit to read from stdin")
	updateCellCmd.Flags().StringVar(&cellSource, "source", "", "Inline source content; omit to read from stdin")
}
