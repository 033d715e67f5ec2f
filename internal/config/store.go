package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// ErrConfigNotFound is returned when the config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// SectionStore is the persistence surface used by the completion tracker.
// A section is a flat string map identified by an opaque id (the remote
// directory path for completion records).
type SectionStore interface {
	ReadSection(id string) (map[string]string, bool)
	WriteSection(id string, values map[string]string) error
	DeleteSection(id string) (bool, error)
}

// Store is an INI-backed SectionStore. Every mutation rewrites the file.
//
// INI format:
//
//	[bitcasa]
//	client-id = ...
//	secret = ...
//	redirect-url = ...
//	username = ...
//	password = ...
//
//	[/Bv_bXxYz/Xb8_Lmn]
//	/Bv_bXxYz/Xb8_Lmn/0dE9 = /home/me/photos/a.jpg
type Store struct {
	path string
	file *ini.File
}

var _ SectionStore = (*Store)(nil)

func loadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		// Passwords and local paths may contain '#' or ';'.
		IgnoreInlineComment: true,
		// Remote paths never contain '=' but local paths on Windows contain ':'.
		KeyValueDelimiters: "=",
		// A password or local path may end in a backslash.
		IgnoreContinuation: true,
	}
}

// LoadStore parses the config file at path.
// Returns ErrConfigNotFound (wrapped, carrying the path) if the file is absent.
func LoadStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	path = ExpandPath(path)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: unable to find config file in [%s]", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	f, err := ini.LoadSources(loadOptions(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return &Store{path: path, file: f}, nil
}

// NewStore returns an empty store that will be written to path on the first mutation.
func NewStore(path string) *Store {
	f := ini.Empty(loadOptions())
	return &Store{path: ExpandPath(path), file: f}
}

// Path returns the file backing this store.
func (s *Store) Path() string {
	return s.path
}

// ReadSection returns a copy of the section's keys and true, or nil and false
// if the section does not exist.
func (s *Store) ReadSection(id string) (map[string]string, bool) {
	sec, err := s.file.GetSection(id)
	if err != nil {
		return nil, false
	}
	return sec.KeysHash(), true
}

// WriteSection replaces the section with values and saves the file.
// Ids, keys and values containing line breaks are refused before anything
// changes, since they would be written as lines the file cannot be parsed
// back from.
func (s *Store) WriteSection(id string, values map[string]string) error {
	if err := checkLine("section", id); err != nil {
		return err
	}
	for k, v := range values {
		if err := checkLine("key", k); err != nil {
			return fmt.Errorf("section %s: %w", id, err)
		}
		if err := checkLine("value of "+k, v); err != nil {
			return fmt.Errorf("section %s: %w", id, err)
		}
	}

	s.file.DeleteSection(id)
	sec, err := s.file.NewSection(id)
	if err != nil {
		return fmt.Errorf("failed to create section %s: %w", id, err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := sec.NewKey(k, values[k]); err != nil {
			return fmt.Errorf("failed to set key %s in section %s: %w", k, id, err)
		}
	}

	return s.save()
}

func checkLine(what, s string) error {
	if strings.ContainsAny(s, "\r\n") {
		return fmt.Errorf("%s %q contains a line break", what, s)
	}
	return nil
}

// DeleteSection removes the section and saves the file. Returns false with no
// write if the section did not exist.
func (s *Store) DeleteSection(id string) (bool, error) {
	if _, err := s.file.GetSection(id); err != nil {
		return false, nil
	}
	s.file.DeleteSection(id)
	if err := s.save(); err != nil {
		return true, err
	}
	return true, nil
}

// save writes the file with restricted permissions (credentials live here).
// Uses temporary file + rename for atomicity.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := s.file.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
