// Package cloud defines the seams between the Bitcasa API client and the
// download engine, plus transfer timing instrumentation.
package cloud

import (
	"context"

	"github.com/bitcasaclient/bitcasa-cli/internal/models"
)

// ChunkStream yields a remote file's bytes in order, one chunk per Next call.
// Next returns io.EOF after the last chunk. A stream is consumed once; a
// retry opens a new one.
type ChunkStream interface {
	Next() ([]byte, error)
	Close() error
}

// ContentSource opens content streams for download targets.
type ContentSource interface {
	OpenContentStream(ctx context.Context, target models.DownloadTarget) (ChunkStream, error)
}

// FolderLister lists the immediate children of a remote folder in server order.
type FolderLister interface {
	ListFolder(ctx context.Context, path string) ([]models.RemoteEntry, error)
}

// MetadataSource fetches a single entry's metadata by remote path.
type MetadataSource interface {
	GetFileMetadata(ctx context.Context, path string) (models.RemoteEntry, error)
}

// RemoteStore is everything the download engine needs from the remote side.
type RemoteStore interface {
	ContentSource
	FolderLister
	MetadataSource
}
