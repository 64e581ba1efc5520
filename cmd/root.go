package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iksnae/pairide/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	statePath  string
	storeKind  string
	configPath string
	noAutoSave bool
	maxSteps   uint64
	timeout    time.Duration
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pairide",
	Short: "Pair coding workspace for shared data notebooks",
	Long: `A lightweight pair coding workspace for data science collaboration.

Collaborators share notebooks of code and text cells, run code cells in an
isolated per-session context, chat, and reference registered datasets.
Every command prints a single JSON value to stdout.

Quick Start:
  pairide init                                   # Create the first notebook
  pairide create-session Pairing <notebook-id>   # Start a session
  pairide add-cell <notebook-id> code --source 'value = 21 * 2
print(value)'
  pairide run-cell <session-id> <notebook-id> <cell-id>`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetLogOutput(cmd.ErrOrStderr())
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", internal.DefaultStatePath, "Path to the workspace state file")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", internal.StoreDriverJSON, "State store backend (json, sqlite)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", internal.DefaultConfigPath, "Path to the optional YAML config file")
	rootCmd.PersistentFlags().BoolVar(&noAutoSave, "no-autosave", false, "Do not persist state after each change")
	rootCmd.PersistentFlags().Uint64Var(&maxSteps, "max-steps", 0, "Cap interpreter steps per cell run (0 = unlimited)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Cap wall-clock time per cell run (0 = none)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves configuration for the running command
func loadConfig(cmd *cobra.Command) (internal.Config, error) {
	return internal.LoadConfig(configPath, cmd.Flags())
}

// openWorkspace loads configuration and opens the workspace it points to.
// Callers must Close the returned workspace.
func openWorkspace(cmd *cobra.Command) (*internal.Workspace, internal.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	store, err := internal.OpenStore(cfg.Store, cfg.StatePath)
	if err != nil {
		return nil, cfg, err
	}
	ws, err := internal.Open(cmd.Context(), internal.Options{
		Store:    store,
		AutoSave: cfg.AutoSave,
		Engine: internal.EngineOptions{
			MaxSteps: cfg.Execution.MaxSteps,
			Timeout:  cfg.Execution.Timeout,
		},
	})
	if err != nil {
		_ = store.Close()
		return nil, cfg, err
	}
	return ws, cfg, nil
}

// withWorkspace runs fn against an open workspace and closes it afterwards
func withWorkspace(cmd *cobra.Command, fn func(ws *internal.Workspace, cfg internal.Config) error) error {
	ws, cfg, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			internal.LogWarn("failed to close store", "err", err)
		}
	}()
	return fn(ws, cfg)
}

// printJSON writes payload as a single indented JSON value
func printJSON(cmd *cobra.Command, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// readSource returns inline source if given, otherwise all of stdin
func readSource(cmd *cobra.Command, inline string, set bool) (string, error) {
	if set {
		return inline, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read source from stdin: %w", err)
	}
	return string(data), nil
}

// choices renders allowed values for error messages
func choices(values ...string) string {
	return strings.Join(values, ", ")
}
