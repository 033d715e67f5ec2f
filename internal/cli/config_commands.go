// Package cli provides configuration management commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect bitcasa configuration",
		Long: `Configuration commands for bitcasa.

Commands:
  path  - Show configuration and token file paths`,
	}

	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Long:  `Display the paths of the configuration file and the API token file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, f := range []struct {
				label string
				path  string
			}{
				{"Config", configPath()},
				{"Token", tokenPath()},
			} {
				status := "missing"
				if info, err := os.Stat(f.path); err == nil {
					status = fmt.Sprintf("%d bytes, modified %s", info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintf(out, "%-7s %s (%s)\n", f.label+":", f.path, status)
			}
			return nil
		},
	}
}
