package driven

// CredentialSource resolves configuration values such as client ids and secrets.
// Lookups happen at request time so values supplied after process start are seen.
type CredentialSource interface {
	// Lookup returns the value for key and whether it is set to a non-empty value.
	Lookup(key string) (string, bool)
}
