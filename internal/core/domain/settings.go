package domain

import (
	"fmt"
	"net/url"
	"time"
)

const unknownDescription = "Unknown"

// StorageBackend selects where search history is kept.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists history in a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps history for the lifetime of the process only.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (history survives restarts)"
	case StorageMemory:
		return "Memory (history lost on exit)"
	default:
		return unknownDescription
	}
}

// AllStorageBackends returns every supported backend.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageSQLite, StorageMemory}
}

// EndpointSettings configures the external crawl-and-search service.
type EndpointSettings struct {
	// URL is the base URL of the service; searches are posted to URL + "/search".
	URL string

	// Timeout bounds a single search round-trip.
	Timeout time.Duration

	// RequestsPerMinute throttles searches client-side. Zero disables throttling.
	RequestsPerMinute int

	// UserAgent is sent with every request.
	UserAgent string
}

// Validate checks the endpoint settings.
func (e EndpointSettings) Validate() error {
	if e.URL == "" {
		return fmt.Errorf("%w: endpoint url is required", ErrInvalidInput)
	}
	u, err := url.Parse(e.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: endpoint url must be an http(s) URL: %q", ErrInvalidInput, e.URL)
	}
	if e.Timeout < 0 {
		return fmt.Errorf("%w: endpoint timeout must not be negative", ErrInvalidInput)
	}
	if e.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: requests per minute must not be negative", ErrInvalidInput)
	}
	return nil
}

// StorageSettings configures search history persistence.
type StorageSettings struct {
	// Backend selects the store implementation.
	Backend StorageBackend

	// Dir is the data directory for the SQLite backend. Empty uses the default.
	Dir string
}

// AppSettings holds all configurable application settings.
type AppSettings struct {
	Endpoint EndpointSettings
	Storage  StorageSettings
}

// Validate checks every section.
func (s AppSettings) Validate() error {
	if err := s.Endpoint.Validate(); err != nil {
		return err
	}
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidInput, s.Storage.Backend)
	}
	return nil
}

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Endpoint: EndpointSettings{
			URL:               "http://localhost:8080",
			Timeout:           120 * time.Second,
			RequestsPerMinute: 10,
			UserAgent:         "sitesearch",
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
	}
}
