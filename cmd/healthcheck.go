package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/pairide/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

var errUnhealthy = errors.New("workspace is unhealthy")

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the workspace state can be loaded and used",
	Long: `Check the health of the workspace by verifying:
  • Configuration resolution
  • State store access
  • State consistency
  • Registered dataset files

Unlike the other commands the report is human-readable, not JSON.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 Workspace Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Resolving configuration..."))
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Invalid configuration:"), err)
			return errUnhealthy
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration resolved"))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Config file: %s\n", configPath)
			fmt.Fprintf(out, "   Store: %s (%s)\n", cfg.StatePath, cfg.Store)
			fmt.Fprintf(out, "   Auto-save: %t\n", cfg.AutoSave)
		}
		fmt.Fprintln(out)

		// Step 2: Store
		fmt.Fprintln(out, infoStyle.Render("Step 2: Opening state store..."))
		if _, err := os.Stat(cfg.StatePath); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No state file yet; run 'pairide init' to create one"))
		}
		store, err := internal.OpenStore(cfg.Store, cfg.StatePath)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open store:"), err)
			return errUnhealthy
		}
		defer func() { _ = store.Close() }()
		fmt.Fprintln(out, successStyle.Render("✅ Store opened"))
		if sqlite, ok := store.(*internal.SQLiteStore); ok && healthcheckVerbose {
			if at, found, err := sqlite.SavedAt(cmd.Context()); err == nil && found {
				fmt.Fprintf(out, "   Last saved: %s\n", at.Format("2006-01-02 15:04:05"))
			}
		}
		fmt.Fprintln(out)

		// Step 3: State
		fmt.Fprintln(out, infoStyle.Render("Step 3: Loading state..."))
		state, err := store.Load(cmd.Context())
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to load state:"), err)
			return errUnhealthy
		}
		fmt.Fprintln(out, successStyle.Render("✅ State loaded and consistent"))
		fmt.Fprintln(out)

		// Step 4: Datasets
		fmt.Fprintln(out, infoStyle.Render("Step 4: Checking dataset files..."))
		missing := checkDatasets(out, state)
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "   Notebooks: %s\n", countStyle.Render(fmt.Sprint(len(state.Notebooks))))
		fmt.Fprintf(out, "   Sessions:  %s\n", countStyle.Render(fmt.Sprint(len(state.Sessions))))
		fmt.Fprintf(out, "   Datasets:  %s\n", countStyle.Render(fmt.Sprint(len(state.Datasets))))
		fmt.Fprintln(out)

		if missing > 0 {
			fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  Healthy with %d missing dataset file(s)", missing)))
			return nil
		}
		fmt.Fprintln(out, successStyle.Render("✅ Workspace is healthy"))
		return nil
	},
}

// checkDatasets reports registered datasets whose files are gone and returns how many
func checkDatasets(out io.Writer, state *internal.WorkspaceState) int {
	if len(state.Datasets) == 0 {
		fmt.Fprintln(out, dimStyle.Render("   No datasets registered"))
		return 0
	}
	missing := 0
	for name, ref := range state.Datasets {
		if _, err := os.Stat(ref.Path); err != nil {
			missing++
			fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  %s: %s is not readable", name, ref.Path)))
			continue
		}
		if healthcheckVerbose {
			fmt.Fprintf(out, "   %s → %s\n", name, ref.Path)
		}
	}
	if missing == 0 {
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ All %d dataset file(s) present", len(state.Datasets))))
	}
	return missing
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "details", "d", false, "Show detailed information")
}
