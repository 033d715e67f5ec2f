// Package config provides configuration management for the bitcasa client.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// ConfigFileName is the credentials/state file in the user's home directory
	ConfigFileName = ".bitcasa"
	// TokenFileName holds the access token obtained by the first login
	TokenFileName = ".bitcasa-token"
)

// DefaultConfigPath returns the config file location.
// BITCASA_CONFIG overrides the default of ~/.bitcasa.
func DefaultConfigPath() string {
	if p := os.Getenv("BITCASA_CONFIG"); p != "" {
		return ExpandPath(p)
	}
	return homeFile(ConfigFileName)
}

// DefaultTokenPath returns the token file location.
// BITCASA_TOKEN_FILE overrides the default of ~/.bitcasa-token.
func DefaultTokenPath() string {
	if p := os.Getenv("BITCASA_TOKEN_FILE"); p != "" {
		return ExpandPath(p)
	}
	return homeFile(TokenFileName)
}

// ExpandPath expands a leading "~" to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

func homeFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to the working directory; the load will report the path it tried.
		return name
	}
	return filepath.Join(home, name)
}
