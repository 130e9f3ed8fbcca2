package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/present"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

var (
	searchUsername      string
	searchPasswordStdin bool
	searchAskPassword   bool
	searchJSON          bool
)

var searchCmd = &cobra.Command{
	Use:   "search <url> <text>",
	Short: "Search a website for text",
	Long: `Asks the search service to crawl <url> and report every page containing <text>.

The first search for a (url, text) pair starts from scratch. Running the same
search again resumes it: pages that were already searched are skipped and new
results are merged into the stored ones. Results are grouped by crawl depth.

For sites behind basic auth, pass --username together with --password-stdin
or --ask-password. Credentials are only sent when both are present.`,
	Example: `  sitesearch search https://example.com "release notes"
  echo "$PASS" | sitesearch search https://intranet.local faq --username me --password-stdin`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchUsername, "username", "u", "", "basic auth username for the crawled site")
	searchCmd.Flags().BoolVar(&searchPasswordStdin, "password-stdin", false, "read the basic auth password from stdin")
	searchCmd.Flags().BoolVar(&searchAskPassword, "ask-password", false, "prompt for the basic auth password")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the outcome as JSON")
	searchCmd.MarkFlagsMutuallyExclusive("password-stdin", "ask-password")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return fmt.Errorf("search: %w", errNotConfigured)
	}

	req := domain.SearchRequest{
		BaseURL:    strings.TrimSpace(args[0]),
		SearchText: args[1],
	}
	if err := req.Key().Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(req.SearchText) > domain.SearchTextSoftLimit {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: search text is longer than %d characters\n", domain.SearchTextSoftLimit)
	}

	creds, err := readCredentials(cmd)
	if err != nil {
		return err
	}
	req.Credentials = creds

	if !searchJSON {
		fmt.Fprintf(cmd.ErrOrStderr(), "Searching %s for %q...\n", req.BaseURL, req.SearchText)
	}

	outcome, err := searchService.ExecuteSearch(cmd.Context(), req)
	if err != nil {
		return describeFailure(err)
	}

	if searchJSON {
		return writeJSON(cmd.OutOrStdout(), present.NewOutcomeView(outcome))
	}
	fmt.Fprint(cmd.OutOrStdout(), present.Outcome(outputStyles(cmd.OutOrStdout()), outcome))
	return nil
}

// readCredentials collects basic auth credentials from the flags.
// Returns nil when no username was given.
func readCredentials(cmd *cobra.Command) (*domain.Credentials, error) {
	if searchUsername == "" {
		if searchPasswordStdin || searchAskPassword {
			return nil, fmt.Errorf("%w: a password needs --username", domain.ErrInvalidInput)
		}
		return nil, nil
	}

	var password string
	switch {
	case searchPasswordStdin:
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	case searchAskPassword:
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		password = readPassword(cmd.InOrStdin())
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	return &domain.Credentials{Username: searchUsername, Password: password}, nil
}

// readPassword reads a password without echo when stdin is a terminal.
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}

// describeFailure adds a hint for failures the user can act on.
func describeFailure(err error) error {
	switch domain.ClassifyError(err) {
	case domain.FailureTransport:
		if domain.IsRetryable(err) {
			return fmt.Errorf("%w (the stored search is unchanged; try again later)", err)
		}
	case domain.FailureUpstream:
		return fmt.Errorf("search service: %w", err)
	}
	return err
}

// outputStyles returns colour styles for terminals and plain ones otherwise.
func outputStyles(w io.Writer) *styles.Styles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return styles.DefaultStyles()
	}
	return styles.PlainStyles()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
