package download

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bitcasaclient/bitcasa-cli/internal/cloud"
	"github.com/bitcasaclient/bitcasa-cli/internal/cloud/state"
	"github.com/bitcasaclient/bitcasa-cli/internal/config"
	"github.com/bitcasaclient/bitcasa-cli/internal/logging"
	"github.com/bitcasaclient/bitcasa-cli/internal/models"
	"github.com/bitcasaclient/bitcasa-cli/internal/progress"
)

// FailedFile is a file that could not be downloaded in full.
type FailedFile struct {
	Path     string
	Name     string
	Written  int64
	Expected int64
	Err      error // nil when the attempts simply ran out
}

func (f FailedFile) String() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Path, f.Err)
	}
	return fmt.Sprintf("%s: incomplete [%d/%d]", f.Path, f.Written, f.Expected)
}

// BatchResult summarizes a get, get-dir, or from-list run.
type BatchResult struct {
	Downloaded int // files fetched or found complete on disk
	Skipped    int // files already in the completion record
	Folders    int
	Unknown    int
	Failed     []FailedFile
	// Completed is set once every entry has been visited and, for a
	// directory, the completion record has been cleared.
	Completed bool
}

// Err summarizes Failed as a single error, or nil when nothing failed.
func (r *BatchResult) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	if len(r.Failed) == 1 {
		return fmt.Errorf("download failed: %s", r.Failed[0])
	}
	return fmt.Errorf("%d downloads failed, first: %s", len(r.Failed), r.Failed[0])
}

// Batch drives downloads of whole directories, single paths, and path
// lists through one Downloader, one file at a time.
type Batch struct {
	store      cloud.RemoteStore
	tracker    *state.Tracker
	downloader *Downloader
	reporter   progress.Reporter
	opts       config.DownloadOptions
	out        io.Writer
	logger     *logging.Logger
}

// NewBatch creates a Batch. Directory progress is recorded through tracker.
func NewBatch(store cloud.RemoteStore, tracker *state.Tracker, opts config.DownloadOptions, out io.Writer, logger *logging.Logger) *Batch {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &Batch{
		store:      store,
		tracker:    tracker,
		downloader: NewDownloader(store, opts, out, logger),
		reporter:   progress.NoOpProgress{},
		opts:       opts,
		out:        out,
		logger:     logger,
	}
}

// SetProgress sets the reporter advanced once per visited entry.
func (b *Batch) SetProgress(r progress.Reporter) {
	if r == nil {
		r = progress.NoOpProgress{}
	}
	b.reporter = r
}

// DownloadDirectory downloads every file directly inside dirPath. Folders
// are not descended into.
//
// Each verified file is added to the directory's completion record as soon
// as it finishes, so an interrupted run resumes where it stopped. The
// record is removed once the listing has been walked, even if some files
// failed; those are listed in the result. Listing failures, cancellation,
// and record persistence failures abort the batch and leave the record in
// place.
func (b *Batch) DownloadDirectory(ctx context.Context, dirPath string) (*BatchResult, error) {
	entries, err := b.store.ListFolder(ctx, dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dirPath, err)
	}

	record, err := b.tracker.Load(dirPath)
	if err != nil {
		return nil, err
	}
	if len(record) > 0 {
		b.logger.Info().
			Str("dir", dirPath).
			Int("completed", len(record)).
			Int("entries", len(entries)).
			Msg("Resuming directory download")
	}

	result := &BatchResult{}
	b.reporter.Start(len(entries), dirPath)
	defer b.reporter.Finish()

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := b.visit(ctx, dirPath, record, entry, result); err != nil {
			return result, err
		}
		b.reporter.Increment()
	}

	if err := b.tracker.Clear(dirPath); err != nil {
		return result, err
	}
	result.Completed = true
	return result, nil
}

func (b *Batch) visit(ctx context.Context, dirPath string, record state.CompletionRecord, entry models.RemoteEntry, result *BatchResult) error {
	if record.Contains(entry.Path) {
		fmt.Fprintf(b.out, "-- Skip '%s' - Completed\n", entry.Name)
		result.Skipped++
		return nil
	}

	switch entry.Kind {
	case models.EntryKindFolder:
		fmt.Fprintf(b.out, "-- Skip '%s' - Folder\n", entry.Name)
		result.Folders++
		return nil

	case models.EntryKindFile:
		target, ok, err := b.downloadEntry(ctx, entry, result)
		if err != nil || !ok {
			return err
		}
		return b.tracker.RecordCompletion(dirPath, record, entry.Path, target.LocalName)

	default:
		fmt.Fprintf(b.out, "-- Skip '%s' - Unknown Item\n", entry)
		result.Unknown++
		return nil
	}
}

// downloadEntry downloads one file entry and files the outcome in result.
// ok reports a verified download. The error is non-nil only when ctx is
// done; every other failure is per-file.
func (b *Batch) downloadEntry(ctx context.Context, entry models.RemoteEntry, result *BatchResult) (models.DownloadTarget, bool, error) {
	target, err := models.TargetFor(entry, b.opts.EffectiveOutputDir())
	if err != nil {
		b.logger.Warn().Err(err).Str("path", entry.Path).Msg("Skipping file")
		result.Failed = append(result.Failed, FailedFile{Path: entry.Path, Name: entry.Name, Expected: entry.Size, Err: err})
		return target, false, nil
	}

	written, err := b.downloader.DownloadFile(ctx, target)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return target, false, ctxErr
		}
		b.logger.Error().Err(err).Str("path", entry.Path).Msg("Download failed")
		result.Failed = append(result.Failed, FailedFile{
			Path: entry.Path, Name: entry.Name, Written: written, Expected: target.ExpectedSize, Err: err,
		})
		return target, false, nil
	}
	if written != target.ExpectedSize {
		result.Failed = append(result.Failed, FailedFile{
			Path: entry.Path, Name: entry.Name, Written: written, Expected: target.ExpectedSize,
		})
		return target, false, nil
	}

	result.Downloaded++
	return target, true, nil
}

// DownloadPath fetches the metadata of a single remote file and downloads it.
func (b *Batch) DownloadPath(ctx context.Context, remotePath string) (*BatchResult, error) {
	result := &BatchResult{}
	if err := b.downloadPath(ctx, remotePath, result); err != nil {
		return result, err
	}
	result.Completed = true
	return result, nil
}

func (b *Batch) downloadPath(ctx context.Context, remotePath string, result *BatchResult) error {
	entry, err := b.store.GetFileMetadata(ctx, remotePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to get file info for %s: %w", remotePath, err)
	}
	if entry.Kind != models.EntryKindFile {
		return fmt.Errorf("%s is a %s, not a file", remotePath, entry.Kind)
	}
	_, _, err = b.downloadEntry(ctx, entry, result)
	return err
}

// DownloadList reads remote file paths from r, one per line, and downloads
// each. Blank lines and lines starting with '#' are ignored. A path that
// cannot be resolved is reported and the list continues.
func (b *Batch) DownloadList(ctx context.Context, r io.Reader) (*BatchResult, error) {
	paths, err := readPathList(r)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	b.reporter.Start(len(paths), "from-list")
	defer b.reporter.Finish()

	for _, remotePath := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := b.downloadPath(ctx, remotePath, result); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			b.logger.Error().Err(err).Msg("Skipping list entry")
			result.Failed = append(result.Failed, FailedFile{Path: remotePath, Err: err})
		}
		b.reporter.Increment()
	}
	result.Completed = true
	return result, nil
}

func readPathList(r io.Reader) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read path list: %w", err)
	}
	return paths, nil
}
