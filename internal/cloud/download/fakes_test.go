package download

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/bitcasaclient/bitcasa-cli/internal/cloud"
	"github.com/bitcasaclient/bitcasa-cli/internal/models"
)

// sliceStream serves fixed chunks, optionally failing with err after
// failAfter chunks.
type sliceStream struct {
	chunks    [][]byte
	next      int
	failAfter int
	err       error
	closed    bool
}

func (s *sliceStream) Next() ([]byte, error) {
	if s.err != nil && s.next >= s.failAfter {
		return nil, s.err
	}
	if s.next >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.next]
	s.next++
	return c, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

// chunked splits content into chunks of size n.
func chunked(content []byte, n int) [][]byte {
	var out [][]byte
	for len(content) > 0 {
		k := n
		if k > len(content) {
			k = len(content)
		}
		out = append(out, content[:k])
		content = content[k:]
	}
	return out
}

// remoteFile describes how the fake server behaves for one remote path.
type remoteFile struct {
	entry     models.RemoteEntry
	content   []byte
	chunkSize int
	// shortAttempts is the number of opens that deliver one byte less than
	// the full content; negative means every open does.
	shortAttempts int
	openErr       error
	// onOpen runs before the stream is returned.
	onOpen func()
}

type fakeRemote struct {
	mu       sync.Mutex
	folders  map[string][]models.RemoteEntry
	files    map[string]*remoteFile
	opens    map[string]int
	listErr  error
	metaErrs map[string]error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		folders:  map[string][]models.RemoteEntry{},
		files:    map[string]*remoteFile{},
		opens:    map[string]int{},
		metaErrs: map[string]error{},
	}
}

var _ cloud.RemoteStore = (*fakeRemote)(nil)

// addFile registers a file of size bytes under dir and returns its entry.
func (f *fakeRemote) addFile(dir, name string, size int) *remoteFile {
	path := dir + "/" + name
	rf := &remoteFile{
		entry: models.RemoteEntry{
			Name: name,
			Path: path,
			Kind: models.EntryKindFile,
			Size: int64(size),
		},
		content:   bytes.Repeat([]byte{byte(len(name))}, size),
		chunkSize: 10,
	}
	f.files[path] = rf
	f.folders[dir] = append(f.folders[dir], rf.entry)
	return rf
}

func (f *fakeRemote) addEntry(dir string, entry models.RemoteEntry) {
	f.folders[dir] = append(f.folders[dir], entry)
}

func (f *fakeRemote) openCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[path]
}

func (f *fakeRemote) totalOpens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.opens {
		total += n
	}
	return total
}

func (f *fakeRemote) ListFolder(ctx context.Context, path string) ([]models.RemoteEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	entries, ok := f.folders[path]
	if !ok {
		return nil, errors.New("no such folder")
	}
	return entries, nil
}

func (f *fakeRemote) GetFileMetadata(ctx context.Context, path string) (models.RemoteEntry, error) {
	if err := f.metaErrs[path]; err != nil {
		return models.RemoteEntry{}, err
	}
	rf, ok := f.files[path]
	if !ok {
		return models.RemoteEntry{}, errors.New("not found")
	}
	return rf.entry, nil
}

func (f *fakeRemote) OpenContentStream(ctx context.Context, target models.DownloadTarget) (cloud.ChunkStream, error) {
	f.mu.Lock()
	f.opens[target.RemotePath]++
	n := f.opens[target.RemotePath]
	f.mu.Unlock()

	rf, ok := f.files[target.RemotePath]
	if !ok {
		return nil, errors.New("not found")
	}
	if rf.onOpen != nil {
		rf.onOpen()
	}
	if rf.openErr != nil {
		return nil, rf.openErr
	}

	content := rf.content
	if rf.shortAttempts < 0 || n <= rf.shortAttempts {
		content = content[:len(content)-1]
	}
	return &sliceStream{chunks: chunked(content, rf.chunkSize)}, nil
}
