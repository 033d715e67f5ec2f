// Package cli provides the command-line interface for bitcasa.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bitcasaclient/bitcasa-cli/internal/config"
	"github.com/bitcasaclient/bitcasa-cli/internal/constants"
	"github.com/bitcasaclient/bitcasa-cli/internal/logging"
	"github.com/bitcasaclient/bitcasa-cli/internal/version"
)

var (
	// Global flags
	cfgFile    string
	tokenFile  string
	noProgress bool
	overwrite  bool
	attempts   int
	outDir     string
	verbose    bool
	timing     bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bitcasa",
		Short: "bitcasa - a command line interface to the Bitcasa REST API",
		Long: `bitcasa ` + version.Version + ` - Built: ` + version.BuildTime + `
A command line interface to the Bitcasa REST API.

Before using bitcasa, create a Client ID and Client Secret at
https://developer.bitcasa.com/ and place your credentials in ~/.bitcasa:

  [bitcasa]
  secret = 79253282352135125cb564243xs2323b
  client-id = 3b73422d
  redirect-url = http://example.com
  username = username@gmail.com
  password = Y0ur!Passw0rd

The first command run logs in with these credentials and stores the API
token in ~/.bitcasa-token for later runs.

Bitcasa tracks files by a unique path that references a specific revision,
so commands take the path of a file or folder, not its name:

  $ bitcasa ls /
  <BitcasaFolder name=My Infinite, path=/daUzyrTPASqWSFTIp69NyQ>
  $ bitcasa get /daUzyrTPQ5qW3JvIp69NyQ/QGX2gsxcvdsDFS3fsdfDFS`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
			if timing {
				os.Setenv("BITCASA_TIMING", "1")
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default ~/.bitcasa)")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Path of the API token file (default ~/.bitcasa-token)")
	rootCmd.PersistentFlags().BoolVarP(&noProgress, "no-progress", "p", false, "Silence the progress bar")
	rootCmd.PersistentFlags().BoolVarP(&overwrite, "overwrite", "o", false, "Download even if the file exists locally with the correct size")
	rootCmd.PersistentFlags().IntVarP(&attempts, "attempts", "a", constants.DefaultDownloadAttempts, "How many attempts are made to download a file")
	rootCmd.PersistentFlags().StringVarP(&outDir, "outdir", "d", ".", "Directory downloaded files are written to")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&timing, "timing", false, "Log timing of content stream requests")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, stopping after the current chunk...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.ExecuteContext(rootContext)

	signal.Stop(sigChan)
	close(sigChan)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newGetDirCmd())
	rootCmd.AddCommand(newFromListCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// commandContext prefers the context cobra was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return GetContext()
}

// downloadOptions collects the global download flags.
func downloadOptions() (config.DownloadOptions, error) {
	opts := config.DefaultDownloadOptions()
	opts.Overwrite = overwrite
	opts.Attempts = attempts
	opts.NoProgress = noProgress
	opts.OutputDir = outDir
	opts.Verbose = verbose
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
