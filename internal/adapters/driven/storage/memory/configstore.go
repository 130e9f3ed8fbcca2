package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// MemoryPath is what ConfigStore.Path reports.
const MemoryPath = ":memory:"

// ConfigStore keeps settings for the lifetime of the process.
// It backs the settings service when no config directory is available.
type ConfigStore struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewConfigStore creates a store holding a copy of seed, which may be nil.
func NewConfigStore(seed map[string]any) *ConfigStore {
	data := make(map[string]any, len(seed))
	maps.Copy(data, seed)
	return &ConfigStore{data: data}
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	str, _ := lookup[string](s, key)
	return str
}

// GetInt retrieves an integer configuration value. Values decoded from
// TOML (int64) or JSON (float64) are accepted too.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func lookup[T any](s *ConfigStore, key string) (T, bool) {
	val, ok := s.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := val.(T)
	return typed, ok
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Save is a no-op; values live in memory only.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op; there is nothing to re-read.
func (s *ConfigStore) Load() error { return nil }

// Path returns MemoryPath.
func (s *ConfigStore) Path() string { return MemoryPath }

// Values returns a copy of every stored setting.
func (s *ConfigStore) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.data)
}
