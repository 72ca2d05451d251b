package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName        = "cognito-srp"
	configFileName = "config.yaml"
)

// UserConfigDir returns the OS-specific user configuration directory for cognito-srp.
// On Linux: ~/.config/cognito-srp
// On macOS: ~/Library/Application Support/cognito-srp
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}

// UserCacheDir returns the OS-specific user cache directory for cognito-srp.
func UserCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(cacheDir, appName), nil
}

// EnsureDir creates a directory and all parent directories with 0700 permissions.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// ResolvePath returns path, or the config file in UserConfigDir when path is empty and that file
// exists. It returns "" when there is nothing to load.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}

	dir, err := UserConfigDir()
	if err != nil {
		return ""
	}

	candidate := filepath.Join(dir, configFileName)
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}
