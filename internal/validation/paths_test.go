package validation

import (
	"testing"
)

func TestValidateFilename(t *testing.T) {
	testCases := []struct {
		name        string
		filename    string
		expectValid bool
	}{
		{name: "simple", filename: "IMG_0016.MOV", expectValid: true},
		{name: "spaces", filename: "my file.txt", expectValid: true},
		{name: "hidden_file", filename: ".hidden", expectValid: true},
		{name: "contains_dots", filename: "data..v2.csv", expectValid: true},
		{name: "unicode", filename: "résumé.pdf", expectValid: true},

		{name: "empty", filename: "", expectValid: false},
		{name: "dot", filename: ".", expectValid: false},
		{name: "parent_dir", filename: "..", expectValid: false},
		{name: "unix_separator", filename: "dir/file.txt", expectValid: false},
		{name: "windows_separator", filename: `dir\file.txt`, expectValid: false},
		{name: "traversal", filename: "../etc/passwd", expectValid: false},
		{name: "null_byte", filename: "file\x00.txt", expectValid: false},
		{name: "newline", filename: "a\nb.bin", expectValid: false},
		{name: "carriage_return", filename: "a.bin\r", expectValid: false},
		{name: "tab", filename: "a\tb.bin", expectValid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFilename(tc.filename)
			if tc.expectValid && err != nil {
				t.Errorf("ValidateFilename(%q) unexpected error: %v", tc.filename, err)
			}
			if !tc.expectValid && err == nil {
				t.Errorf("ValidateFilename(%q) expected error, got nil", tc.filename)
			}
		})
	}
}

func TestValidateRemotePath(t *testing.T) {
	testCases := []struct {
		name        string
		path        string
		expectValid bool
	}{
		{name: "folder_id", path: "/Bv_bXxYz/Xb8_Lmn", expectValid: true},
		{name: "with_spaces", path: "/d/IMG 1.MOV", expectValid: true},
		{name: "empty", path: "", expectValid: false},
		{name: "newline", path: "/dir/a\nb", expectValid: false},
		{name: "carriage_return", path: "/dir/a\r", expectValid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRemotePath(tc.path)
			if tc.expectValid && err != nil {
				t.Errorf("ValidateRemotePath(%q) unexpected error: %v", tc.path, err)
			}
			if !tc.expectValid && err == nil {
				t.Errorf("ValidateRemotePath(%q) expected error, got nil", tc.path)
			}
		})
	}
}
