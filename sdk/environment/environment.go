// Package environment provides support for env vars and configuration
// loading with namespacing and defaults.
package environment

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from a .env file in the working
// directory. Missing files are not an error in deployed environments.
func LoadEnv() error {
	return godotenv.Load()
}

// LoadPath loads environment variables from the given path, falling back to
// the default .env lookup when the path is empty.
func LoadPath(p string) error {
	if p != "" {
		return godotenv.Load(p)
	}
	return godotenv.Load()
}

// GetEnvOrDefault retrieves an environment variable value, returning the
// fallback when the variable is not set.
func GetEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvKeyPrefix constructs a namespaced environment variable key. An empty
// prefix returns the key unchanged.
func GetEnvKeyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", strings.ToUpper(prefix), key)
}
