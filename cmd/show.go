package cmd

import (
	"fmt"

	"github.com/iksnae/pairide/internal"
	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <notebook|session> <id>",
	Short: "Show one notebook or session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, id := args[0], args[1]
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			switch kind {
			case "notebook":
				notebook, err := ws.Notebook(id)
				if err != nil {
					return err
				}
				return printJSON(cmd, notebook)
			case "session":
				session, err := ws.Session(id)
				if err != nil {
					return err
				}
				return printJSON(cmd, session)
			default:
				return fmt.Errorf("unknown kind %q (supported: %s)", kind, choices("notebook", "session"))
			}
		})
	},
}

// resetSessionCmd represents the reset-session command
var resetSessionCmd = &cobra.Command{
	Use:   "reset-session <session-id>",
	Short: "Discard a session's execution context",
	Long: `Discard the variables a session's code cells have bound.

Execution contexts live only as long as the process, so this matters for
batch runs and embedders; the persisted state is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			if err := ws.ResetSession(args[0]); err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"status": "reset", "session_id": args[0]})
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(resetSessionCmd)
}
