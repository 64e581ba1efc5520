package cmd

import (
	"github.com/iksnae/pairide/internal"
	"github.com/spf13/cobra"
)

var (
	datasetDescription string
	previewLimit       int
)

// registerDatasetCmd represents the register-dataset command
var registerDatasetCmd = &cobra.Command{
	Use:   "register-dataset <name> <path>",
	Short: "Register a dataset file under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			ref, err := ws.RegisterDataset(cmd.Context(), args[0], args[1], datasetDescription)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{
				"status": "registered",
				"name":   ref.Name,
				"path":   ref.Path,
				"format": ref.Format,
			})
		})
	},
}

// previewDatasetCmd represents the preview-dataset command
var previewDatasetCmd = &cobra.Command{
	Use:   "preview-dataset <name>",
	Short: "Preview the first rows of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *internal.Workspace, cfg internal.Config) error {
			limit := previewLimit
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Preview.DefaultLimit
			}
			preview, err := ws.PreviewDataset(args[0], limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, preview)
		})
	},
}

// datasetSummaryCmd represents the dataset-summary command
var datasetSummaryCmd = &cobra.Command{
	Use:   "dataset-summary <name>",
	Short: "Show min/max/mean/median/count for numeric columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			summary, err := ws.DatasetSummary(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		})
	},
}

func init() {
	rootCmd.AddCommand(registerDatasetCmd)
	rootCmd.AddCommand(previewDatasetCmd)
	rootCmd.AddCommand(datasetSummaryCmd)

	registerDatasetCmd.Flags().StringVar(&datasetDescription, "description", "", "Dataset description")
	previewDatasetCmd.Flags().IntVar(&previewLimit, "limit", internal.DefaultPreviewLimit, "Number of rows to preview")
}
