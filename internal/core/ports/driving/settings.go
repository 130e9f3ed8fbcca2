package driving

import "github.com/custodia-labs/sitesearch-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its config key (e.g. "endpoint.url").
	Set(key, value string) error

	// Keys returns every settable config key.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
