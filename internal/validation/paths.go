// Package validation checks names received from the API before they touch
// the local filesystem.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateFilename validates a remote display name before it is used as a
// local file name. Entry names come from the API, so anything that could
// walk out of the output directory is rejected.
//
// Returns an error if the name:
//   - Is empty, "." or ".."
//   - Contains path separators (/ or \)
//   - Contains null bytes or other control characters
func ValidateFilename(filename string) error {
	switch filename {
	case "":
		return fmt.Errorf("filename cannot be empty")
	case ".", "..":
		return fmt.Errorf("filename cannot be %q", filename)
	}

	if strings.ContainsRune(filename, 0) {
		return fmt.Errorf("filename contains null byte: %q", filename)
	}

	if strings.IndexFunc(filename, unicode.IsControl) >= 0 {
		return fmt.Errorf("filename contains control characters: %q", filename)
	}

	// Both separators are rejected regardless of platform; "foo..bar" stays legal.
	if strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("filename cannot contain path separators: %s", filename)
	}

	return nil
}

// ValidateRemotePath checks a remote path before it is used as a key in the
// completion record. Line breaks would split the record line in two.
func ValidateRemotePath(remotePath string) error {
	if remotePath == "" {
		return fmt.Errorf("remote path cannot be empty")
	}
	if strings.IndexFunc(remotePath, unicode.IsControl) >= 0 {
		return fmt.Errorf("remote path contains control characters: %q", remotePath)
	}
	return nil
}
