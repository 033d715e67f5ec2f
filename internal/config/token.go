package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/bitcasaclient/bitcasa-cli/internal/constants"
)

// ReadTokenFile returns the access token stored at path.
// A missing file or an empty key yields "" with no error; the caller logs in.
func ReadTokenFile(path string) (string, error) {
	path = ExpandPath(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}

	f, err := ini.LoadSources(loadOptions(), path)
	if err != nil {
		return "", fmt.Errorf("failed to load token file %s: %w", path, err)
	}
	return strings.TrimSpace(f.Section(constants.CredentialsSection).Key(constants.AccessTokenKey).String()), nil
}

// WriteTokenFile stores token at path as [bitcasa] access-token, readable only by the user.
func WriteTokenFile(path, token string) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f := ini.Empty(loadOptions())
	sec, err := f.NewSection(constants.CredentialsSection)
	if err != nil {
		return fmt.Errorf("failed to create %s section: %w", constants.CredentialsSection, err)
	}
	sec.Key(constants.AccessTokenKey).SetValue(token)

	tmpPath := path + ".tmp"
	if err := f.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set token file permissions: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save token file: %w", err)
	}
	return nil
}
