package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for sitesearch.

The TUI lets you start new searches, browse the search history, resume a
previous search and scroll through results grouped by crawl depth.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Select
  Esc      - Back
  ?        - Help (from the menu)
  q        - Quit (from the menu)
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if searchService == nil {
		return fmt.Errorf("tui: %w", errNotConfigured)
	}

	app, err := tui.NewApp(tui.NewPorts(searchService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Searches still running when the UI exits are abandoned.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
