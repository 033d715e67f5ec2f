package config

import (
	"fmt"

	"github.com/bitcasaclient/bitcasa-cli/internal/constants"
)

// DownloadOptions are the per-invocation switches that shape a download.
// They are passed explicitly to the engine rather than read from globals.
type DownloadOptions struct {
	Overwrite  bool   // re-download even when the local size already matches
	Attempts   int    // whole-file attempts per download, at least 1
	NoProgress bool   // suppress the progress line and the batch bar
	OutputDir  string // local directory files are written to
	Verbose    bool
}

// DefaultDownloadOptions returns options matching the CLI defaults.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{
		Attempts:  constants.DefaultDownloadAttempts,
		OutputDir: ".",
	}
}

// Validate rejects option combinations the engine cannot honor.
func (o DownloadOptions) Validate() error {
	if o.Attempts < 1 {
		return fmt.Errorf("attempts must be at least 1, got %d", o.Attempts)
	}
	return nil
}

// EffectiveOutputDir returns OutputDir or "." when unset.
func (o DownloadOptions) EffectiveOutputDir() string {
	if o.OutputDir == "" {
		return "."
	}
	return ExpandPath(o.OutputDir)
}
