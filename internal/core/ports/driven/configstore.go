package driven

// ConfigStore provides key/value access to the configuration file.
// Keys use dot notation matching the file's tables, e.g. "endpoint.url".
type ConfigStore interface {
	// Get retrieves a value and whether the key exists.
	Get(key string) (any, bool)

	// GetString returns the string at key, or "" when missing or not a string.
	GetString(key string) string

	// GetInt returns the integer at key, or 0 when missing or not an integer.
	GetInt(key string) int

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save writes the current configuration to storage.
	Save() error

	// Load re-reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
