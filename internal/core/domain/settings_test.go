package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageBackend_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		backend  StorageBackend
		expected bool
	}{
		{"sqlite is valid", StorageSQLite, true},
		{"memory is valid", StorageMemory, true},
		{"empty is invalid", StorageBackend(""), false},
		{"unknown is invalid", StorageBackend("postgres"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.backend.IsValid())
		})
	}
}

func TestStorageBackend_Description(t *testing.T) {
	for _, b := range AllStorageBackends() {
		assert.NotEqual(t, unknownDescription, b.Description(), b.String())
	}
	assert.Equal(t, unknownDescription, StorageBackend("x").Description())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, "http://localhost:8080", s.Endpoint.URL)
	assert.Equal(t, 120*time.Second, s.Endpoint.Timeout)
	assert.Equal(t, 10, s.Endpoint.RequestsPerMinute)
	assert.Equal(t, StorageSQLite, s.Storage.Backend)
	require.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*AppSettings)
	}{
		{"empty endpoint url", func(s *AppSettings) { s.Endpoint.URL = "" }},
		{"non-http endpoint url", func(s *AppSettings) { s.Endpoint.URL = "ftp://example.com" }},
		{"endpoint url without host", func(s *AppSettings) { s.Endpoint.URL = "http://" }},
		{"negative timeout", func(s *AppSettings) { s.Endpoint.Timeout = -time.Second }},
		{"negative rate", func(s *AppSettings) { s.Endpoint.RequestsPerMinute = -1 }},
		{"unknown backend", func(s *AppSettings) { s.Storage.Backend = "redis" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.modify(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}
