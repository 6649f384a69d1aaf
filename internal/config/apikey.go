package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files (".env" when none
// are named) without overriding ones already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ResolveSecret resolves a secret based on the given source.
// Supported sources: "env" (from environment variable) and "config" (the
// value as written).
func ResolveSecret(source, configValue, envVar string) (string, error) {
	switch source {
	case "env":
		return resolveFromEnv(envVar)
	case "", "config":
		if configValue == "" {
			return "", fmt.Errorf("secret source is 'config' but no value provided")
		}
		return configValue, nil
	default:
		return "", fmt.Errorf("unknown secret source: %q", source)
	}
}

func resolveFromEnv(envVar string) (string, error) {
	if envVar == "" {
		return "", fmt.Errorf("no environment variable name specified")
	}
	val := os.Getenv(envVar)
	if val == "" {
		return "", fmt.Errorf("environment variable %s is not set", envVar)
	}
	return val, nil
}
