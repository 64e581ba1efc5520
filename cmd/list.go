package cmd

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/pairide/internal"
	"github.com/spf13/cobra"
)

var (
	listTable bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:       "list <notebooks|sessions|datasets>",
	Short:     "List notebooks, sessions or datasets",
	Long:      `List notebooks, sessions or datasets as JSON, or as a table with --table.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"notebooks", "sessions", "datasets"},
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		switch target {
		case "notebooks", "sessions", "datasets":
		default:
			return fmt.Errorf("unknown list target %q (supported: %s)", target, choices("notebooks", "sessions", "datasets"))
		}

		return withWorkspace(cmd, func(ws *internal.Workspace, _ internal.Config) error {
			out := cmd.OutOrStdout()
			switch target {
			case "notebooks":
				notebooks := slices.Collect(ws.ListNotebooks())
				if listTable {
					displayNotebooks(out, notebooks)
					return nil
				}
				return printJSON(cmd, notebooks)
			case "sessions":
				sessions := slices.Collect(ws.ListSessions())
				if listTable {
					displaySessions(out, sessions)
					return nil
				}
				return printJSON(cmd, sessions)
			default:
				datasets := ws.ListDatasets()
				if listTable {
					displayDatasets(out, datasets)
					return nil
				}
				return printJSON(cmd, datasets)
			}
		})
	},
}

func displayNotebooks(out io.Writer, notebooks []*internal.Notebook) {
	if len(notebooks) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📓 No notebooks found"))
		return
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📓 Found %d notebook(s)", len(notebooks))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Cells")+"\t"+titleStyle.Render("Ran")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))
	for _, notebook := range notebooks {
		ran := 0
		for _, cell := range notebook.Cells {
			if cell.LastResult != nil {
				ran++
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(notebook.ID),
			truncate(notebook.Title, 40),
			countStyle.Render(strconv.Itoa(len(notebook.Cells))),
			dimStyle.Render(strconv.Itoa(ran)))
	}
	_ = w.Flush()
}

func displaySessions(out io.Writer, sessions []*internal.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, headerStyle.Render("👥 No sessions found"))
		return
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("👥 Found %d session(s)", len(sessions))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Notebook")+"\t"+titleStyle.Render("People")+"\t"+titleStyle.Render("Runs")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))
	for _, session := range sessions {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(session.ID),
			truncate(session.Name, 30),
			dimStyle.Render(session.NotebookID),
			countStyle.Render(strconv.Itoa(len(session.Collaborators))),
			countStyle.Render(strconv.Itoa(len(session.Checkpoints))))
	}
	_ = w.Flush()
}

func displayDatasets(out io.Writer, datasets []*internal.DatasetReference) {
	if len(datasets) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📊 No datasets registered"))
		return
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📊 Found %d dataset(s)", len(datasets))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("Name")+"\t"+titleStyle.Render("Format")+"\t"+titleStyle.Render("Path")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))
	for _, ref := range datasets {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n", ref.Name, countStyle.Render(ref.Format), dimStyle.Render(ref.Path))
	}
	_ = w.Flush()
}

// truncate shortens long names but keeps them readable
func truncate(s string, max int) string {
	if s == "" {
		return "Untitled"
	}
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listTable, "table", false, "Render a table instead of JSON")
}
