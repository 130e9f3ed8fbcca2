package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyEndpointURL       = "endpoint.url"
	KeyEndpointTimeout   = "endpoint.timeout_seconds"
	KeyEndpointRate      = "endpoint.requests_per_minute"
	KeyEndpointUserAgent = "endpoint.user_agent"
	KeyStorageBackend    = "storage.backend"
	KeyStorageDir        = "storage.dir"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, filling unset keys with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Endpoint: domain.EndpointSettings{
			URL:               s.getString(KeyEndpointURL, defaults.Endpoint.URL),
			Timeout:           s.getSeconds(KeyEndpointTimeout, defaults.Endpoint.Timeout),
			RequestsPerMinute: s.getInt(KeyEndpointRate, defaults.Endpoint.RequestsPerMinute),
			UserAgent:         s.getString(KeyEndpointUserAgent, defaults.Endpoint.UserAgent),
		},
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			Dir:     s.configStore.GetString(KeyStorageDir), // No default - empty means the standard data dir
		},
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := map[string]any{
		KeyEndpointURL:       settings.Endpoint.URL,
		KeyEndpointTimeout:   int(settings.Endpoint.Timeout / time.Second),
		KeyEndpointRate:      settings.Endpoint.RequestsPerMinute,
		KeyEndpointUserAgent: settings.Endpoint.UserAgent,
		KeyStorageBackend:    settings.Storage.Backend.String(),
		KeyStorageDir:        settings.Storage.Dir,
	}
	for _, key := range s.Keys() {
		if err := s.configStore.Set(key, values[key]); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}
	return nil
}

// Set updates one setting. The value is parsed according to the key and the
// resulting settings must validate before anything is written.
func (s *SettingsService) Set(key, value string) error {
	current, err := s.Get()
	if err != nil {
		return err
	}

	var stored any = value
	switch key {
	case KeyEndpointURL:
		current.Endpoint.URL = value
	case KeyEndpointUserAgent:
		current.Endpoint.UserAgent = value
	case KeyEndpointTimeout, KeyEndpointRate:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %q", domain.ErrInvalidInput, key, value)
		}
		if key == KeyEndpointTimeout {
			current.Endpoint.Timeout = time.Duration(n) * time.Second
		} else {
			current.Endpoint.RequestsPerMinute = n
		}
		stored = n
	case KeyStorageBackend:
		current.Storage.Backend = domain.StorageBackend(value)
	case KeyStorageDir:
		current.Storage.Dir = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := current.Validate(); err != nil {
		return err
	}
	return s.configStore.Set(key, stored)
}

// Keys returns every settable config key, sorted.
func (s *SettingsService) Keys() []string {
	keys := []string{
		KeyEndpointURL,
		KeyEndpointTimeout,
		KeyEndpointRate,
		KeyEndpointUserAgent,
		KeyStorageBackend,
		KeyStorageDir,
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Second
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(KeyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
