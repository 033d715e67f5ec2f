package download

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bitcasaclient/bitcasa-cli/internal/cloud"
	"github.com/bitcasaclient/bitcasa-cli/internal/config"
	"github.com/bitcasaclient/bitcasa-cli/internal/constants"
	"github.com/bitcasaclient/bitcasa-cli/internal/diskspace"
	"github.com/bitcasaclient/bitcasa-cli/internal/logging"
	"github.com/bitcasaclient/bitcasa-cli/internal/models"
	"github.com/bitcasaclient/bitcasa-cli/internal/progress"
)

// timestampLayout is used on the "saved" status line.
const timestampLayout = "2006-01-02 15:04:05.000000"

// Downloader fetches single files, retrying whole-file attempts until the
// local size matches the expected size or the attempts run out.
type Downloader struct {
	source cloud.ContentSource
	opts   config.DownloadOptions
	out    io.Writer
	logger *logging.Logger
	window int
}

// NewDownloader creates a Downloader. Status lines and the progress line go
// to out; diagnostics go to logger. Either may be nil.
func NewDownloader(source cloud.ContentSource, opts config.DownloadOptions, out io.Writer, logger *logging.Logger) *Downloader {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &Downloader{
		source: source,
		opts:   opts,
		out:    out,
		logger: logger,
		window: constants.ProgressWindowChunks,
	}
}

// DownloadFile downloads target to target.LocalName and returns the number
// of bytes the local file ends up with.
//
// A file that already has the expected size is skipped without touching
// the network unless Overwrite is set. Running out of attempts is not an
// error: the short count is returned with a nil error. Errors are returned
// only when retrying cannot help: the local file cannot be written, there
// is not enough disk space, or ctx is done.
func (d *Downloader) DownloadFile(ctx context.Context, target models.DownloadTarget) (int64, error) {
	fmt.Fprintf(d.out, "-- Downloading '%s' (%s)\n", target.Name, target.RemotePath)

	if size := IsComplete(target.LocalName, target.ExpectedSize); size != 0 && !d.opts.Overwrite {
		fmt.Fprintf(d.out, "-- File '%s' exists and has correct size, Skip..\n", target.Name)
		cloud.TimingLog(nil, "skip %s: %s on disk", target.Name, cloud.FormatBytes(size))
		return target.ExpectedSize, nil
	}

	if err := diskspace.CheckAvailableSpace(target.LocalName, target.ExpectedSize, constants.DiskSpaceSafetyMargin); err != nil {
		if diskspace.IsInsufficientSpaceError(err) {
			d.logger.Error().Str("path", target.LocalName).Msg(err.Error())
		}
		return 0, err
	}

	attempts := d.opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var written int64
	for attempt := 1; attempt <= attempts; attempt++ {
		timer := cloud.StartTimer(nil, fmt.Sprintf("attempt %d %s", attempt, target.Name))
		n, err := d.attempt(ctx, target)
		written = n
		if err != nil {
			timer.Stop()
			return written, err
		}

		elapsed := timer.StopWithThroughput(written)
		fmt.Fprintf(d.out, "-- %s (%.2f KB/s) - %s saved [%d/%d]\n",
			time.Now().Format(timestampLayout),
			cloud.KBPerSecond(written, elapsed),
			target.Name, written, target.ExpectedSize)

		if written == target.ExpectedSize {
			return written, nil
		}

		if attempt == attempts {
			fmt.Fprintln(d.out, "-- File download was incomplete - Failed, Retries exhausted")
		} else {
			fmt.Fprintf(d.out, "-- File download was incomplete - Retry attempt '%d'\n", attempt+1)
		}
	}

	d.logger.Debug().
		Str("path", target.RemotePath).
		Int64("written", written).
		Int64("expected", target.ExpectedSize).
		Msg("download attempts exhausted")
	return written, nil
}

// attempt makes one whole-file attempt. Transport failures are logged and
// reported as whatever was written; only fatal errors are returned.
func (d *Downloader) attempt(ctx context.Context, target models.DownloadTarget) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	stream, err := d.source.OpenContentStream(ctx, target)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		d.logger.Warn().Err(err).Str("path", target.RemotePath).Msg("failed to open content stream")
		return 0, nil
	}
	defer stream.Close()

	reporter := progress.NewLineReporter(d.out, target.ExpectedSize, !d.opts.NoProgress)
	written, err := WriteStream(ctx, target.LocalName, stream, d.window, reporter.Update)
	reporter.Finish()

	if err != nil {
		if IsLocalFileError(err) {
			return written, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return written, ctxErr
		}
		d.logger.Warn().
			Err(err).
			Str("path", target.RemotePath).
			Int64("received", written).
			Msg("content stream ended early")
	}
	return written, nil
}
