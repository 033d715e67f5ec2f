package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bitcasaclient/bitcasa-cli/internal/cloud"
)

// WindowFunc receives one throughput sample: the time spent on the window,
// the bytes received during it, and the bytes received so far in total.
// progress.LineReporter.Update has this signature.
type WindowFunc func(elapsed time.Duration, windowBytes, totalBytes int64)

// LocalFileError reports a failure creating, writing, or closing the local
// destination file. Unlike a stream error it means retrying the download
// cannot help.
type LocalFileError struct {
	Op   string
	Path string
	Err  error
}

func (e *LocalFileError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocalFileError) Unwrap() error {
	return e.Err
}

// IsLocalFileError checks if an error is or wraps a LocalFileError
func IsLocalFileError(err error) bool {
	var target *LocalFileError
	return errors.As(err, &target)
}

// WriteStream truncates localName and appends every chunk of stream to it in
// order. onWindow is called after each run of window chunks and once more
// when the stream ends, with whatever the last window holds.
//
// The returned count is always the number of bytes on disk. A stream error
// or context cancellation is returned with it; completeness is the caller's
// call, made by comparing the count with the expected size.
func WriteStream(ctx context.Context, localName string, stream cloud.ChunkStream, window int, onWindow WindowFunc) (int64, error) {
	if window < 1 {
		window = 1
	}

	f, err := os.OpenFile(localName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, &LocalFileError{Op: "create", Path: localName, Err: err}
	}

	var (
		total       int64
		windowBytes int64
		chunks      int
		windowStart = time.Now()
	)
	sample := func() {
		if onWindow != nil {
			onWindow(time.Since(windowStart), windowBytes, total)
		}
		windowBytes = 0
		windowStart = time.Now()
	}

	var streamErr error
	for {
		if err := ctx.Err(); err != nil {
			streamErr = err
			break
		}

		chunk, err := stream.Next()
		if len(chunk) > 0 {
			n, werr := f.Write(chunk)
			total += int64(n)
			windowBytes += int64(n)
			if werr != nil {
				f.Close()
				return total, &LocalFileError{Op: "write", Path: localName, Err: werr}
			}
			chunks++
			if chunks%window == 0 {
				sample()
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
	}
	sample()

	if err := f.Close(); err != nil && streamErr == nil {
		return total, &LocalFileError{Op: "close", Path: localName, Err: err}
	}
	return total, streamErr
}
