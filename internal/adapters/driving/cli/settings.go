package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the search service endpoint and history storage.

Settings are stored in config.toml inside the config directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting and save it.

Run 'sitesearch settings keys' to list the available keys.`,
	Example: `  sitesearch settings set endpoint.url http://search.internal:8080
  sitesearch settings set endpoint.requests_per_minute 0
  sitesearch settings set storage.backend memory`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings: %w", errNotConfigured)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Endpoint]")
	cmd.Printf("  URL: %s\n", settings.Endpoint.URL)
	cmd.Printf("  Timeout: %s\n", settings.Endpoint.Timeout)
	if settings.Endpoint.RequestsPerMinute > 0 {
		cmd.Printf("  Requests per minute: %d\n", settings.Endpoint.RequestsPerMinute)
	} else {
		cmd.Println("  Requests per minute: unlimited")
	}
	cmd.Printf("  User agent: %s\n", settings.Endpoint.UserAgent)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	if settings.Storage.Backend == domain.StorageSQLite {
		dir := settings.Storage.Dir
		if dir == "" {
			dir = "(default)"
		}
		cmd.Printf("  Directory: %s\n", dir)
	}
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'sitesearch settings set <key> <value>' to fix it.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings: %w", errNotConfigured)
	}

	key, value := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings: %w", errNotConfigured)
	}

	defaults := settingsService.GetDefaults()
	defaultValues := map[string]string{
		"endpoint.url":                 defaults.Endpoint.URL,
		"endpoint.timeout_seconds":     fmt.Sprint(int(defaults.Endpoint.Timeout.Seconds())),
		"endpoint.requests_per_minute": fmt.Sprint(defaults.Endpoint.RequestsPerMinute),
		"endpoint.user_agent":          defaults.Endpoint.UserAgent,
		"storage.backend":              defaults.Storage.Backend.String(),
	}

	for _, key := range settingsService.Keys() {
		if def, ok := defaultValues[key]; ok {
			cmd.Printf("  %-30s (default %s)\n", key, def)
		} else {
			cmd.Printf("  %s\n", key)
		}
	}
	return nil
}
