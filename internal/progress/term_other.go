//go:build !windows

package progress

import "os"

// enableVirtualTerminal is a no-op; Unix terminals process ANSI codes natively.
func enableVirtualTerminal(f *os.File) bool {
	return true
}
