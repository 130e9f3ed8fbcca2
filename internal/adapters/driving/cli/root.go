// Package cli implements the sitesearch command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driving"
	"github.com/custodia-labs/sitesearch-cli/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services wired into the commands.
var (
	searchService   driving.SearchService
	settingsService driving.SettingsService
)

// Services is what a Bootstrap function hands to the commands.
type Services struct {
	Search   driving.SearchService
	Settings driving.SettingsService

	// Close releases resources such as the history database. May be nil.
	Close func() error
}

// Bootstrap builds the services once flags are parsed.
// configDir is the --config-dir flag value ("" = default).
type Bootstrap func(configDir string) (*Services, error)

var (
	bootstrap    Bootstrap
	closeService func() error
)

var errNotConfigured = errors.New("service not configured")

var rootCmd = &cobra.Command{
	Use:   "sitesearch",
	Short: "Search a website for text through a crawl service",
	Long: `sitesearch asks a crawl-and-search service to look for a phrase on a
website and keeps a local history of every search.

Searching the same site for the same text again resumes where the last
search stopped: pages already searched are skipped and new results are
merged into the stored ones.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return Shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.sitesearch)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects services directly, bypassing Bootstrap.
func SetServices(s *Services) {
	searchService = s.Search
	settingsService = s.Settings
	closeService = s.Close
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
// Cancelling ctx abandons an in-flight search.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an error to the process exit code.
// 2 is an input error, 3 a transport failure, 4 an upstream failure.
func ExitCode(err error) int {
	switch domain.ClassifyError(err) {
	case domain.FailureNone:
		return 0
	case domain.FailureInput:
		return 2
	case domain.FailureTransport:
		return 3
	case domain.FailureUpstream:
		return 4
	default:
		return 1
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	// The version command needs nothing wired.
	if cmd == versionCmd || bootstrap == nil || searchService != nil {
		return nil
	}

	services, err := bootstrap(configDir)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	return nil
}

// Shutdown releases wired resources. Safe to call more than once.
func Shutdown() error {
	if closeService == nil {
		return nil
	}
	err := closeService()
	closeService = nil
	return err
}
