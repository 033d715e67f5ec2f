package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bitcasaclient/bitcasa-cli/internal/models"
)

// categoryFolders is the item category the API uses for directories.
const categoryFolders = "folders"

// itemResponse is one entry as returned by /folders and /files/info.
type itemResponse struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

type folderResponse struct {
	Items []itemResponse `json:"items"`
}

// toEntry maps the API category to an entry kind. Any non-folder category
// (photos, documents, music, videos, other) is a file; an item without a
// category is something this client does not know how to handle.
func (it itemResponse) toEntry() models.RemoteEntry {
	e := models.RemoteEntry{Name: it.Name, Path: it.Path}
	switch {
	case it.Category == categoryFolders:
		e.Kind = models.EntryKindFolder
	case it.Category != "":
		e.Kind = models.EntryKindFile
		e.Size = it.Size
	default:
		e.Kind = models.EntryKindUnknown
	}
	return e
}

// ListFolder returns the immediate children of the folder at path, in server order.
func (c *Client) ListFolder(ctx context.Context, path string) ([]models.RemoteEntry, error) {
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var folder folderResponse
	if err := c.getJSON(ctx, "/folders"+escapeRemotePath(path), nil, true, &folder); err != nil {
		return nil, fmt.Errorf("list folder %s: %w", path, err)
	}

	entries := make([]models.RemoteEntry, 0, len(folder.Items))
	for _, it := range folder.Items {
		entries = append(entries, it.toEntry())
	}
	return entries, nil
}

// GetFileMetadata returns the entry for a single remote file path.
func (c *Client) GetFileMetadata(ctx context.Context, path string) (models.RemoteEntry, error) {
	var item itemResponse
	params := url.Values{"path": {path}}
	if err := c.getJSON(ctx, "/files/info", params, true, &item); err != nil {
		return models.RemoteEntry{}, fmt.Errorf("get file info %s: %w", path, err)
	}

	entry := item.toEntry()
	if entry.Path == "" {
		entry.Path = path
	}
	if entry.Kind == models.EntryKindUnknown {
		// /files/info only answers for files; some responses omit the category.
		entry.Kind = models.EntryKindFile
		entry.Size = item.Size
	}
	return entry, nil
}

// escapeRemotePath escapes each segment of a slash-separated remote path.
func escapeRemotePath(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
