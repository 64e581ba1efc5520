package cmd

import (
	"github.com/iksnae/pairide/internal"
	"github.com/spf13/cobra"
)

var (
	sessionCollaborators []string
	collaboratorRole     string
)

// createSessionCmd represents the create-session command
var createSessionCmd = &cobra.Command{
	Use:   "create-session <name> <notebook-id>",
	Short: "Create a collaboration session bound to a notebook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		seeds := make([]internal.CollaboratorSeed, 0, len(sessionCollaborators))
		for _, raw := range sessionCollaborators {
			seeds = append(seeds, internal.ParseCollaboratorSeed(raw))
		}
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			session, err := ws.CreateSession(cmd.Context(), args[0], args[1], seeds)
			if err != nil {
				return err
			}
			return printJSON(cmd, session)
		})
	},
}

// addCollaboratorCmd represents the add-collaborator command
var addCollaboratorCmd = &cobra.Command{
	Use:   "add-collaborator <session-id> <name>",
	Short: "Add a collaborator to a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			collaborator, err := ws.AddCollaborator(cmd.Context(), args[0], args[1], collaboratorRole)
			if err != nil {
				return err
			}
			return printJSON(cmd, collaborator)
		})
	},
}

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat <session-id> <author> <message>",
	Short: "Post a chat message to a session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			message, err := ws.PostMessage(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return printJSON(cmd, message)
		})
	},
}

// runCellCmd represents the run-cell command
var runCellCmd = &cobra.Command{
	Use:   "run-cell <session-id> <notebook-id> <cell-id>",
	Short: "Execute a cell in the session's context",
	Long: `Execute a cell in the session's execution context and store the result on the cell.

Code cells that fail still succeed as a command: the error is reported in the
cell's last_result. Running a cell through a session bound to another notebook
is rejected.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			cell, err := ws.RunCell(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return printJSON(cmd, cell)
		})
	},
}

func init() {
	rootCmd.AddCommand(createSessionCmd)
	rootCmd.AddCommand(addCollaboratorCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(runCellCmd)

	createSessionCmd.Flags().StringArrayVar(&sessionCollaborators, "collaborator", nil, "Seed collaborators in the format name:role (repeatable)")
	addCollaboratorCmd.Flags().StringVar(&collaboratorRole, "role", internal.DefaultRole, "Collaborator role")
}
