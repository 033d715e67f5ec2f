package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Reporter tracks progress through a directory listing, one step per entry.
type Reporter interface {
	Start(total int, description string)
	Increment()
	Finish()
}

// BatchProgress shows how many entries of a directory have been handled.
// It prints a snapshot of the bar after each entry, on its own line, so it
// never shares a line with the per-file progress line on stdout.
type BatchProgress struct {
	w    io.Writer
	ansi bool
	bar  *progressbar.ProgressBar
}

// NewBatchProgress creates a file-count bar writing to w.
func NewBatchProgress(w io.Writer) *BatchProgress {
	ansi := false
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		ansi = enableVirtualTerminal(f)
	}
	return &BatchProgress{w: w, ansi: ansi}
}

// Start initializes the bar for total entries.
func (p *BatchProgress) Start(total int, description string) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionUseANSICodes(p.ansi),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(false),
	)
}

// Increment advances the bar by one entry and leaves the snapshot on its own line.
func (p *BatchProgress) Increment() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
	fmt.Fprint(p.w, "\n")
}

// Finish completes the bar.
func (p *BatchProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Exit()
	p.bar = nil
}

// NoOpProgress is a Reporter that does nothing (for --no-progress or non-terminal output).
type NoOpProgress struct{}

// Start does nothing.
func (NoOpProgress) Start(total int, description string) {}

// Increment does nothing.
func (NoOpProgress) Increment() {}

// Finish does nothing.
func (NoOpProgress) Finish() {}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// NewBatchReporter returns a BatchProgress on w when enabled and w is a
// terminal, and a NoOpProgress otherwise.
func NewBatchReporter(w *os.File, enabled bool) Reporter {
	if !enabled || !IsTerminal(w) {
		return NoOpProgress{}
	}
	return NewBatchProgress(w)
}
