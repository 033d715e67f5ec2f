// timing.go - Transfer timing instrumentation for diagnostics
//
// Enable timing output by setting BITCASA_TIMING=1 environment variable.
// Output format: [TIMING] phase_name: duration (optional_details)
//
// Example output:
//
//	[TIMING] open stream IMG_0016.MOV: 312ms
//	[TIMING] attempt 1 IMG_0016.MOV: 19.8s (total 22.3 MB at 1.1 MB/s)
package cloud

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

// TimingEnabled returns true if BITCASA_TIMING=1 environment variable is set.
func TimingEnabled() bool {
	return os.Getenv("BITCASA_TIMING") == "1"
}

// TimingLog writes a timing message to the writer if BITCASA_TIMING=1.
// If writer is nil, os.Stderr is used.
func TimingLog(w io.Writer, format string, args ...interface{}) {
	if !TimingEnabled() {
		return
	}
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "[TIMING] %s\n", fmt.Sprintf(format, args...))
}

// Timer tracks elapsed time for a named phase.
// Stop is idempotent; only the first call logs.
type Timer struct {
	name    string
	start   time.Time
	w       io.Writer
	stopped int32 // atomic flag
}

// StartTimer creates a new timer. The timer will use os.Stderr if writer is nil.
func StartTimer(w io.Writer, name string) *Timer {
	if w == nil {
		w = os.Stderr
	}
	return &Timer{
		name:  name,
		start: time.Now(),
		w:     w,
	}
}

// Stop logs the elapsed time and returns the duration.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if atomic.CompareAndSwapInt32(&t.stopped, 0, 1) && TimingEnabled() {
		fmt.Fprintf(t.w, "[TIMING] %s: %v\n", t.name, elapsed)
	}
	return elapsed
}

// StopWithThroughput logs elapsed time with throughput information.
func (t *Timer) StopWithThroughput(bytes int64) time.Duration {
	elapsed := time.Since(t.start)
	if atomic.CompareAndSwapInt32(&t.stopped, 0, 1) && TimingEnabled() {
		bytesPerSec := 0.0
		if elapsed > 0 {
			bytesPerSec = float64(bytes) / elapsed.Seconds()
		}
		fmt.Fprintf(t.w, "[TIMING] %s: %v (total %s at %s)\n",
			t.name, elapsed, FormatBytes(bytes), FormatSpeed(bytesPerSec))
	}
	return elapsed
}

// KBPerSecond converts a byte count over a duration to KiB/s.
// A zero or negative duration yields 0 rather than +Inf.
func KBPerSecond(bytes int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return (float64(bytes) / elapsed.Seconds()) / 1024
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatSpeed returns a human-readable speed in bytes/second.
func FormatSpeed(bytesPerSec float64) string {
	if bytesPerSec < 1024 {
		return fmt.Sprintf("%.1f B/s", bytesPerSec)
	}
	if bytesPerSec < 1024*1024 {
		return fmt.Sprintf("%.1f KB/s", bytesPerSec/1024)
	}
	return fmt.Sprintf("%.1f MB/s", bytesPerSec/(1024*1024))
}
