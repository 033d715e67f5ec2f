// bitcasa - command line client for the Bitcasa REST API
package main

import (
	"os"

	"github.com/bitcasaclient/bitcasa-cli/internal/cli"
	"github.com/bitcasaclient/bitcasa-cli/internal/version"
)

// Version information, set by ldflags during release builds
var (
	Version   = ""
	BuildTime = ""
)

func main() {
	if Version != "" {
		version.Version = Version
	}
	if BuildTime != "" {
		version.BuildTime = BuildTime
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
