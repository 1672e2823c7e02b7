package config

import "fmt"

// a required setting is missing or unusable; always fatal at startup
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s environment variable is required", e.Key)
	}

	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

func missing(key string) error {
	return &ConfigurationError{Key: key}
}
