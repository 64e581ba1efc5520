package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/iksnae/pairide/internal"
	"github.com/spf13/cobra"
)

// runAllCmd represents the run-all command
var runAllCmd = &cobra.Command{
	Use:   "run-all <session-id> <notebook-id>",
	Short: "Execute every cell of a notebook in order",
	Long: `Execute every cell of a notebook, top to bottom, in one session context.

Variables bound by earlier cells are visible to later ones. Failed cells are
recorded and execution continues with the next cell.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			notebook, err := ws.Notebook(args[1])
			if err != nil {
				return err
			}
			cells := make([]*internal.Cell, 0, len(notebook.Cells))
			steps := make([]internal.ProgressStep, 0, len(notebook.Cells))
			for _, cell := range notebook.Cells {
				steps = append(steps, internal.ProgressStep{
					Message: fmt.Sprintf("%s cell %s", cell.Type, cell.ID),
					Fn: func() (bool, error) {
						ran, err := ws.RunCell(cmd.Context(), args[0], args[1], cell.ID)
						if err != nil {
							return false, err
						}
						cells = append(cells, ran)
						return ran.LastResult.Success, nil
					},
				})
			}
			if err := internal.ShowProgressWithSteps(cmd.Context(), cmd.ErrOrStderr(), steps); err != nil {
				return err
			}
			return printJSON(cmd, cells)
		})
	},
}

// runBatchCmd represents the run-batch command
var runBatchCmd = &cobra.Command{
	Use:   "run-batch",
	Short: "Execute a batch of cell runs read from stdin",
	Long: `Execute a batch of cell runs described as a JSON array on stdin:

  [{"session_id": "...", "notebook_id": "...", "cell_id": "..."}, ...]

Every request is checked before anything runs; one bad request rejects the
whole batch. Runs for different sessions execute in parallel; runs for the same
session execute one after another in request order. Results are printed in
request order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var requests []internal.RunRequest
		if err := json.NewDecoder(cmd.InOrStdin()).Decode(&requests); err != nil {
			return fmt.Errorf("failed to parse batch: %w", err)
		}
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			cells, err := ws.RunCells(cmd.Context(), requests)
			if err != nil {
				return err
			}
			return printJSON(cmd, cells)
		})
	},
}

func init() {
	rootCmd.AddCommand(runAllCmd)
	rootCmd.AddCommand(runBatchCmd)
}
