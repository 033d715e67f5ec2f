// Package models defines the data types exchanged with the Bitcasa API and
// passed through the download engine.
package models

import (
	"fmt"
	"path/filepath"

	"github.com/bitcasaclient/bitcasa-cli/internal/validation"
)

// EntryKind tags a RemoteEntry as a file, a folder, or something the client
// does not understand.
type EntryKind int

const (
	// EntryKindUnknown is any item the API returned that is neither a file nor a folder
	EntryKindUnknown EntryKind = iota
	// EntryKindFile is a downloadable file
	EntryKindFile
	// EntryKindFolder is a directory; directory downloads never descend into it
	EntryKindFolder
)

// String returns a human-readable name for an EntryKind
func (k EntryKind) String() string {
	switch k {
	case EntryKindFile:
		return "file"
	case EntryKindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// RemoteEntry is an immutable snapshot of one item in a folder listing.
// Path identifies a specific revision of the content and is what the API
// expects in every call; Name is only used for display and the local file name.
type RemoteEntry struct {
	Name string
	Path string
	Kind EntryKind
	Size int64 // bytes, File only
}

// String mirrors the listing format printed by `ls`.
func (e RemoteEntry) String() string {
	switch e.Kind {
	case EntryKindFile:
		return fmt.Sprintf("<BitcasaFile name=%s, path=%s, size=%d>", e.Name, e.Path, e.Size)
	case EntryKindFolder:
		return fmt.Sprintf("<BitcasaFolder name=%s, path=%s>", e.Name, e.Path)
	default:
		return fmt.Sprintf("<BitcasaItem name=%s, path=%s>", e.Name, e.Path)
	}
}

// DownloadTarget describes one file download: where it comes from, where it
// goes, and how big it must be to count as complete.
type DownloadTarget struct {
	RemotePath   string
	Name         string // remote display name, also the content endpoint segment
	LocalName    string // local file path
	ExpectedSize int64
}

// TargetFor derives a DownloadTarget from a File entry. The entry name comes
// from the API and is validated before it is joined onto outputDir.
func TargetFor(entry RemoteEntry, outputDir string) (DownloadTarget, error) {
	if entry.Kind != EntryKindFile {
		return DownloadTarget{}, fmt.Errorf("%s is a %s, not a file", entry.Path, entry.Kind)
	}
	if err := validation.ValidateFilename(entry.Name); err != nil {
		return DownloadTarget{}, fmt.Errorf("invalid filename from API for %s: %w", entry.Path, err)
	}
	if err := validation.ValidateRemotePath(entry.Path); err != nil {
		return DownloadTarget{}, fmt.Errorf("invalid path from API for %q: %w", entry.Name, err)
	}
	if outputDir == "" {
		outputDir = "."
	}
	return DownloadTarget{
		RemotePath:   entry.Path,
		Name:         entry.Name,
		LocalName:    filepath.Join(outputDir, entry.Name),
		ExpectedSize: entry.Size,
	}, nil
}
