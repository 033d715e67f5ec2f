// Package progress renders transfer progress: the per-attempt progress line
// on stdout and the per-directory file counter on stderr.
package progress

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/bitcasaclient/bitcasa-cli/internal/cloud"
	"github.com/bitcasaclient/bitcasa-cli/internal/constants"
)

// LineReporter redraws a single progress line once per window:
//
//	[=====     ] 52.34%  4114.51 KB/s
//
// The line is rewritten in place with a carriage return and terminated by
// Finish. A disabled reporter writes nothing.
type LineReporter struct {
	w        io.Writer
	expected int64
	enabled  bool
	drawn    bool
}

// NewLineReporter creates a reporter for a file of expectedSize bytes.
func NewLineReporter(w io.Writer, expectedSize int64, enabled bool) *LineReporter {
	return &LineReporter{w: w, expected: expectedSize, enabled: enabled && w != nil}
}

// Update redraws the line. elapsed and windowBytes cover the window just
// finished; totalBytes is everything received so far in this attempt.
// Its signature matches the download engine's window callback.
func (r *LineReporter) Update(elapsed time.Duration, windowBytes, totalBytes int64) {
	if !r.enabled {
		return
	}
	fmt.Fprint(r.w, FormatLine(Percent(totalBytes, r.expected), cloud.KBPerSecond(windowBytes, elapsed)))
	r.drawn = true
}

// Finish ends the progress line so the next status line starts on its own.
func (r *LineReporter) Finish() {
	if !r.enabled || !r.drawn {
		return
	}
	fmt.Fprint(r.w, "\n")
	r.drawn = false
}

// Percent returns total/expected as a percentage rounded to two decimals.
// An empty expected file is 100% done.
func Percent(total, expected int64) float64 {
	if expected <= 0 {
		return 100
	}
	return math.Round(float64(total)/float64(expected)*100*100) / 100
}

// FormatLine renders one progress line: one '=' per full 10% in a fixed
// width bar, the percentage, and the window throughput.
func FormatLine(percent, kbs float64) string {
	cells := int(percent / 10)
	if cells > constants.ProgressBarWidth {
		cells = constants.ProgressBarWidth
	}
	if cells < 0 {
		cells = 0
	}
	bar := strings.Repeat("=", cells) + strings.Repeat(" ", constants.ProgressBarWidth-cells)
	return fmt.Sprintf("\r[%s] %.2f%%  %.2f KB/s      ", bar, percent, kbs)
}
