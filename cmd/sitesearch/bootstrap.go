package main

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driven/searchapi"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch-cli/internal/core/services"
	"github.com/custodia-labs/sitesearch-cli/internal/logger"
)

// bootstrap wires the adapters and services from the settings in configDir.
// An empty configDir means ~/.sitesearch.
func bootstrap(configDir string) (*cli.Services, error) {
	logger.Section("Bootstrap")

	configStore, err := openConfigStore(configDir)
	if err != nil {
		return nil, err
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	// Invalid settings must not block 'settings set', so only warn here.
	if err := settings.Validate(); err != nil {
		logger.Warn("settings: %v", err)
	}

	store, closeStore, err := openSessionStore(settings.Storage, configDir)
	if err != nil {
		return nil, err
	}

	endpoint := searchapi.NewClient(searchapi.ConfigFromSettings(settings.Endpoint))
	logger.Debug("search service: %s", settings.Endpoint.URL)

	return &cli.Services{
		Search:   services.NewSearchController(store, endpoint),
		Settings: settingsService,
		Close:    closeStore,
	}, nil
}

// openConfigStore opens config.toml in configDir. Without a home directory
// to default to, settings and history are kept in memory for this run.
func openConfigStore(configDir string) (driven.ConfigStore, error) {
	if configDir == "" {
		if _, err := file.DefaultDir(); err != nil {
			logger.Warn("no config directory (%v); settings and history will not be saved", err)
			return memory.NewConfigStore(map[string]any{
				services.KeyStorageBackend: string(domain.StorageMemory),
			}), nil
		}
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return store, nil
}

// openSessionStore opens the history backend named in the settings.
func openSessionStore(cfg domain.StorageSettings, configDir string) (driven.SessionStore, func() error, error) {
	switch cfg.Backend {
	case domain.StorageMemory:
		logger.Debug("history: in memory")
		return memory.NewSessionStore(), nil, nil

	default:
		dir := cfg.Dir
		if dir == "" && configDir != "" {
			dir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening history: %w", err)
		}
		logger.Debug("history: %s", store.Path())
		return store.SessionStore(), store.Close, nil
	}
}
