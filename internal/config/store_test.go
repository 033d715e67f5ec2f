package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLoadStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope")

	_, err := LoadStore(path)
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the path tried, got %q", err.Error())
	}
}

func TestStoreSectionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitcasa.ini")
	s := NewStore(path)

	values := map[string]string{
		"/Bv_bXxYz/Xb8_Lmn/0dE9": "/home/me/photos/a.jpg",
		"/Bv_bXxYz/Xb8_Lmn/Ab12": "/home/me/photos/B c#1.jpg",
	}
	if err := s.WriteSection("/Bv_bXxYz/Xb8_Lmn", values); err != nil {
		t.Fatalf("WriteSection failed: %v", err)
	}

	loaded, err := LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore failed: %v", err)
	}
	got, ok := loaded.ReadSection("/Bv_bXxYz/Xb8_Lmn")
	if !ok {
		t.Fatal("expected section to exist after reload")
	}
	if len(got) != len(values) {
		t.Fatalf("expected %d keys, got %d: %v", len(values), len(got), got)
	}
	for k, v := range values {
		if got[k] != v {
			t.Errorf("key %s: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestStoreWriteSectionReplaces(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "bitcasa.ini"))

	if err := s.WriteSection("dir", map[string]string{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("WriteSection failed: %v", err)
	}
	if err := s.WriteSection("dir", map[string]string{"c": "3"}); err != nil {
		t.Fatalf("WriteSection failed: %v", err)
	}

	got, ok := s.ReadSection("dir")
	if !ok {
		t.Fatal("expected section to exist")
	}
	if len(got) != 1 || got["c"] != "3" {
		t.Errorf("expected only c=3, got %v", got)
	}
}

func TestStoreReadSectionMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "bitcasa.ini"))

	got, ok := s.ReadSection("missing")
	if ok {
		t.Error("expected ok=false for missing section")
	}
	if got != nil {
		t.Errorf("expected nil map, got %v", got)
	}
}

func TestStoreDeleteSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitcasa.ini")
	s := NewStore(path)

	existed, err := s.DeleteSection("missing")
	if err != nil {
		t.Fatalf("DeleteSection failed: %v", err)
	}
	if existed {
		t.Error("expected existed=false for missing section")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("deleting a missing section should not write the file")
	}

	if err := s.WriteSection("dir", map[string]string{"a": "1"}); err != nil {
		t.Fatalf("WriteSection failed: %v", err)
	}
	existed, err = s.DeleteSection("dir")
	if err != nil {
		t.Fatalf("DeleteSection failed: %v", err)
	}
	if !existed {
		t.Error("expected existed=true")
	}

	loaded, err := LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore failed: %v", err)
	}
	if _, ok := loaded.ReadSection("dir"); ok {
		t.Error("section should be gone after reload")
	}
}

func TestStorePreservesOtherSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitcasa.ini")
	content := "[bitcasa]\nclient-id = abc\nsecret = s3cr#t\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	s, err := LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore failed: %v", err)
	}
	if err := s.WriteSection("dir", map[string]string{"a": "1"}); err != nil {
		t.Fatalf("WriteSection failed: %v", err)
	}

	reloaded, err := LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore failed: %v", err)
	}
	creds, ok := reloaded.ReadSection("bitcasa")
	if !ok {
		t.Fatal("credentials section lost")
	}
	if creds["secret"] != "s3cr#t" {
		t.Errorf("expected secret to survive inline '#', got %q", creds["secret"])
	}
}

func TestStoreFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on Windows")
	}

	path := filepath.Join(t.TempDir(), "bitcasa.ini")
	s := NewStore(path)
	if err := s.WriteSection("dir", map[string]string{"a": "1"}); err != nil {
		t.Fatalf("WriteSection failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("expected mode 0600, got %o", mode)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after save")
	}
}

func TestStoreTrailingBackslashRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitcasa.ini")
	s := NewStore(path)

	creds := map[string]string{"password": `p\`, "username": "u"}
	if err := s.WriteSection("bitcasa", creds); err != nil {
		t.Fatalf("WriteSection failed: %v", err)
	}
	record := map[string]string{
		"/dir/k1": `C:\photos\`,
		"/dir/k2": "plain",
	}
	if err := s.WriteSection("/dir", record); err != nil {
		t.Fatalf("WriteSection failed: %v", err)
	}

	loaded, err := LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore failed: %v", err)
	}
	for id, want := range map[string]map[string]string{"bitcasa": creds, "/dir": record} {
		got, ok := loaded.ReadSection(id)
		if !ok {
			t.Fatalf("section %s lost after reload", id)
		}
		if len(got) != len(want) {
			t.Errorf("section %s: expected %v, got %v", id, want, got)
		}
		for k, v := range want {
			if got[k] != v {
				t.Errorf("section %s key %s: expected %q, got %q", id, k, v, got[k])
			}
		}
	}
}

func TestStoreWriteSectionRejectsLineBreaks(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		values map[string]string
	}{
		{"value", "/dir", map[string]string{"/dir/a": "line1\nline2"}},
		{"key", "/dir", map[string]string{"/dir/a\nb": "/out/a"}},
		{"carriage return", "/dir", map[string]string{"/dir/a": "/out/a\r"}},
		{"section", "/d\nir", map[string]string{"/dir/a": "/out/a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bitcasa.ini")
			s := NewStore(path)
			if err := s.WriteSection("bitcasa", map[string]string{"username": "u"}); err != nil {
				t.Fatalf("WriteSection failed: %v", err)
			}

			if err := s.WriteSection(tt.id, tt.values); err == nil {
				t.Fatal("expected an error for a line break")
			}

			loaded, err := LoadStore(path)
			if err != nil {
				t.Fatalf("file no longer parses: %v", err)
			}
			creds, ok := loaded.ReadSection("bitcasa")
			if !ok || creds["username"] != "u" {
				t.Errorf("credentials changed: %v", creds)
			}
			if _, ok := s.ReadSection(tt.id); ok {
				t.Errorf("section %q created despite the error", tt.id)
			}
		})
	}
}
