package download

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsComplete(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.bin")
	require.NoError(t, os.WriteFile(full, make([]byte, 100), 0644))

	tests := []struct {
		name     string
		path     string
		expected int64
		want     int64
	}{
		{"matching size", full, 100, 100},
		{"larger expected", full, 101, 0},
		{"smaller expected", full, 99, 0},
		{"missing file", filepath.Join(dir, "missing.bin"), 100, 0},
		{"directory", dir, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComplete(tt.path, tt.expected))
		})
	}
}

type windowSample struct {
	windowBytes int64
	totalBytes  int64
}

func recordWindows(samples *[]windowSample) WindowFunc {
	return func(elapsed time.Duration, windowBytes, totalBytes int64) {
		*samples = append(*samples, windowSample{windowBytes, totalBytes})
	}
}

func TestWriteStream_ExactContent(t *testing.T) {
	content := make([]byte, 1000)
	for i := range content {
		content[i] = byte(i % 251)
	}
	stream := &sliceStream{chunks: chunked(content, 10)}
	local := filepath.Join(t.TempDir(), "out.bin")

	var samples []windowSample
	n, err := WriteStream(context.Background(), local, stream, 30, recordWindows(&samples))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)

	got, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(content, got), "local file differs from streamed content")

	// 100 chunks: windows after 30, 60 and 90 chunks, then the final 10.
	require.Len(t, samples, 4)
	var sum int64
	for _, s := range samples {
		sum += s.windowBytes
	}
	assert.Equal(t, int64(1000), sum)
	assert.Equal(t, int64(1000), samples[3].totalBytes)
	assert.Equal(t, int64(100), samples[3].windowBytes)
}

func TestWriteStream_WindowCadence(t *testing.T) {
	stream := &sliceStream{chunks: chunked(make([]byte, 650), 10)}
	local := filepath.Join(t.TempDir(), "out.bin")

	var samples []windowSample
	_, err := WriteStream(context.Background(), local, stream, 30, recordWindows(&samples))
	require.NoError(t, err)

	assert.Equal(t, []windowSample{
		{300, 300},
		{300, 600},
		{50, 650},
	}, samples)
}

func TestWriteStream_TruncatesExistingFile(t *testing.T) {
	local := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, os.WriteFile(local, make([]byte, 5000), 0644))

	n, err := WriteStream(context.Background(), local, &sliceStream{chunks: chunked(make([]byte, 20), 10)}, 30, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)

	info, err := os.Stat(local)
	require.NoError(t, err)
	assert.Equal(t, int64(20), info.Size())
}

func TestWriteStream_StreamErrorKeepsCount(t *testing.T) {
	streamErr := errors.New("connection reset")
	stream := &sliceStream{chunks: chunked(make([]byte, 100), 10), failAfter: 5, err: streamErr}
	local := filepath.Join(t.TempDir(), "out.bin")

	var samples []windowSample
	n, err := WriteStream(context.Background(), local, stream, 30, recordWindows(&samples))
	assert.ErrorIs(t, err, streamErr)
	assert.False(t, IsLocalFileError(err))
	assert.Equal(t, int64(50), n)
	require.Len(t, samples, 1, "final partial window is still reported")
	assert.Equal(t, int64(50), samples[0].totalBytes)
}

func TestWriteStream_CreateError(t *testing.T) {
	local := filepath.Join(t.TempDir(), "missing", "out.bin")

	n, err := WriteStream(context.Background(), local, &sliceStream{}, 30, nil)
	require.Error(t, err)
	assert.True(t, IsLocalFileError(err))
	assert.Equal(t, int64(0), n)
}

func TestWriteStream_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	local := filepath.Join(t.TempDir(), "out.bin")

	n, err := WriteStream(ctx, local, &sliceStream{chunks: chunked(make([]byte, 100), 10)}, 30, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), n)
}
