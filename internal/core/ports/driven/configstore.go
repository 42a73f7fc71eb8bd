package driven

// ConfigStore is a persistent key/value configuration document.
//
// Keys use dot notation. Client credentials live under "credentials.<KEY>",
// so every ConfigStore is also a CredentialSource, and provider overrides
// live under "providers.<name>.scopes" and "providers.<name>.sandbox".
type ConfigStore interface {
	CredentialSource

	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetBool retrieves a boolean configuration value.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice configuration value.
	// Returns nil if the key doesn't exist, and a non-nil empty slice if the
	// key holds an empty list.
	GetStringSlice(key string) []string

	// Set stores a configuration value.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}

// CredentialKeyPrefix prefixes credential entries in a ConfigStore.
const CredentialKeyPrefix = "credentials."
