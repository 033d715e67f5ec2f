package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bitcasaclient/bitcasa-cli/internal/api"
	"github.com/bitcasaclient/bitcasa-cli/internal/cloud"
	"github.com/bitcasaclient/bitcasa-cli/internal/cloud/download"
	"github.com/bitcasaclient/bitcasa-cli/internal/cloud/state"
	"github.com/bitcasaclient/bitcasa-cli/internal/config"
	"github.com/bitcasaclient/bitcasa-cli/internal/diskspace"
	"github.com/bitcasaclient/bitcasa-cli/internal/progress"
)

// newLsCmd creates the 'ls' command.
func newLsCmd() *cobra.Command {
	var pathOnly bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a folder",
		Long: `Perform a directory listing of a Bitcasa folder path (default "/"),
one entry per line.

Examples:
  bitcasa ls /
  bitcasa ls /daUzyrTPASqWSFTIp69NyQ --ls-path-only`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}

			ctx := commandContext(cmd)
			client, _, err := getAPIClient(ctx)
			if err != nil {
				return err
			}

			entries, err := client.ListFolder(ctx, path)
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("no such folder %q: %w", path, err)
				}
				return err
			}
			GetLogger().Debugf("%s: %d entries", path, len(entries))

			out := cmd.OutOrStdout()
			for _, entry := range entries {
				if pathOnly {
					fmt.Fprintln(out, entry.Path)
					continue
				}
				fmt.Fprintln(out, entry)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pathOnly, "ls-path-only", "l", false, "Only print the paths and not the names")

	return cmd
}

// newGetCmd creates the 'get' command.
func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Download a file",
		Long: `Download the file at a Bitcasa path, saving it under the name the API
reports for it.

Example:
  bitcasa get /daUzyrTPQ5qW3JvIp69NyQ/QGX2gsxcvdsDFS3fsdfDFS`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			batch, err := newBatch(cmd)
			if err != nil {
				return err
			}
			result, err := batch.DownloadPath(ctx, args[0])
			if err != nil {
				return err
			}
			return result.Err()
		},
	}
}

// newGetDirCmd creates the 'get-dir' command.
func newGetDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-dir <path>",
		Short: "Download every file in a folder",
		Long: `Download every file listed directly in the Bitcasa folder at path.
Sub-folders are skipped.

Completed files are recorded in the config file as they finish, so an
interrupted get-dir picks up where it stopped when run again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			batch, err := newBatch(cmd)
			if err != nil {
				return err
			}

			result, err := batch.DownloadDirectory(ctx, args[0])
			if err != nil {
				return err
			}

			GetLogger().Info().
				Int("downloaded", result.Downloaded).
				Int("skipped", result.Skipped).
				Int("folders", result.Folders).
				Int("unknown", result.Unknown).
				Int("failed", len(result.Failed)).
				Msgf("Finished %s", args[0])
			for _, failed := range result.Failed {
				GetLogger().Warn().Msgf("Not downloaded: %s", failed)
			}
			return result.Err()
		},
	}
}

// newFromListCmd creates the 'from-list' command.
func newFromListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "from-list <file>",
		Short: "Download every path listed in a file",
		Long: `Read Bitcasa file paths from a local file, one per line, and download
each of them. Lines starting with '#' and blank lines are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(config.ExpandPath(args[0]))
			if err != nil {
				return fmt.Errorf("failed to open path list: %w", err)
			}
			defer f.Close()

			ctx := commandContext(cmd)
			batch, err := newBatch(cmd)
			if err != nil {
				return err
			}

			result, err := batch.DownloadList(ctx, f)
			if err != nil {
				return err
			}
			return result.Err()
		},
	}
}

// newLoginCmd creates the 'login' command.
func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and save a new API token",
		Long: `Log in with the credentials in the config file and save a fresh API
token, replacing any token already saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadSettings()
			if err != nil {
				return err
			}
			client, err := api.NewClient(cfg)
			if err != nil {
				return fmt.Errorf("failed to create API client: %w", err)
			}

			path := tokenPath()
			if err := login(commandContext(cmd), client, cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", path)
			return nil
		},
	}
}

// newBatch builds the download engine for a command from the global flags.
func newBatch(cmd *cobra.Command) (*download.Batch, error) {
	opts, err := downloadOptions()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.EffectiveOutputDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if free := diskspace.GetAvailableSpace(filepath.Join(opts.EffectiveOutputDir(), ".")); free > 0 {
		GetLogger().Debugf("%s free in %s", cloud.FormatBytes(free), opts.EffectiveOutputDir())
	}

	client, store, err := getAPIClient(commandContext(cmd))
	if err != nil {
		return nil, err
	}

	batch := download.NewBatch(client, state.NewTracker(store), opts, cmd.OutOrStdout(), GetLogger())
	batch.SetProgress(progress.NewBatchReporter(os.Stderr, !opts.NoProgress))
	return batch, nil
}
