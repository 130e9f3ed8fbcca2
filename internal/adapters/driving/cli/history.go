package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/present"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous searches",
	Long: `Lists every stored search, most recently updated first.

Use 'sitesearch history show <url> <text>' to see the stored results of one
search, or 'sitesearch search <url> <text>' to resume it.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <url> <text>",
	Short: "Show the stored results of a search without searching",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return fmt.Errorf("history: %w", errNotConfigured)
	}

	summaries, err := searchService.History(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if historyJSON {
		return writeJSON(cmd.OutOrStdout(), present.NewSummaryViews(summaries))
	}

	if len(summaries) == 0 {
		cmd.Println("No searches yet.")
		return nil
	}

	st := outputStyles(cmd.OutOrStdout())
	for i, s := range summaries {
		cmd.Printf("%3d. %s\n", i+1, present.SummaryLine(st, s))
		cmd.Printf("     %s\n", present.SummaryDetail(s))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return fmt.Errorf("history: %w", errNotConfigured)
	}

	key := domain.SessionKey{BaseURL: strings.TrimSpace(args[0]), SearchText: args[1]}
	outcome, err := searchService.Session(cmd.Context(), key)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: no stored search for %s", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return fmt.Errorf("failed to load search: %w", err)
	}

	if historyJSON {
		return writeJSON(cmd.OutOrStdout(), present.NewOutcomeView(outcome))
	}
	fmt.Fprint(cmd.OutOrStdout(), present.Outcome(outputStyles(cmd.OutOrStdout()), outcome))
	return nil
}
