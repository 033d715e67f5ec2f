// Package state persists which files of a directory download are already
// complete, so an interrupted get-dir resumes without fetching them again.
package state

import (
	"fmt"
	"strings"

	"github.com/bitcasaclient/bitcasa-cli/internal/config"
	"github.com/bitcasaclient/bitcasa-cli/internal/constants"
)

// CompletionRecord maps remote paths to the local file each was saved as.
// A path is present only if the local size matched the expected size when
// it was recorded.
type CompletionRecord map[string]string

// Contains reports whether remotePath was recorded complete.
func (r CompletionRecord) Contains(remotePath string) bool {
	_, ok := r[remotePath]
	return ok
}

// Tracker loads, grows, and clears completion records in a SectionStore,
// one section per remote directory.
type Tracker struct {
	store config.SectionStore
}

// NewTracker creates a tracker backed by store.
func NewTracker(store config.SectionStore) *Tracker {
	return &Tracker{store: store}
}

// reservedSections share the config file with completion records.
var reservedSections = []string{constants.CredentialsSection, constants.ProxySection, "DEFAULT"}

func checkDirID(dirID string) error {
	if dirID == "" {
		return fmt.Errorf("directory id is empty")
	}
	for _, name := range reservedSections {
		if strings.EqualFold(dirID, name) {
			return fmt.Errorf("directory id %q collides with config section [%s]", dirID, name)
		}
	}
	return nil
}

// Load returns the persisted record for dirID, or an empty record if there is none.
func (t *Tracker) Load(dirID string) (CompletionRecord, error) {
	if err := checkDirID(dirID); err != nil {
		return nil, err
	}
	record := CompletionRecord{}
	values, ok := t.store.ReadSection(dirID)
	if !ok {
		return record, nil
	}
	for remotePath, localName := range values {
		record[remotePath] = localName
	}
	return record, nil
}

// RecordCompletion adds remotePath to record and persists the whole record
// before returning, so a crash right after a file finishes does not lose it.
func (t *Tracker) RecordCompletion(dirID string, record CompletionRecord, remotePath, localName string) error {
	record[remotePath] = localName
	if err := t.Save(dirID, record); err != nil {
		return fmt.Errorf("failed to record %s as complete: %w", remotePath, err)
	}
	return nil
}

// Save persists record under dirID. An empty record is not written.
func (t *Tracker) Save(dirID string, record CompletionRecord) error {
	if err := checkDirID(dirID); err != nil {
		return err
	}
	if len(record) == 0 {
		return nil
	}
	return t.store.WriteSection(dirID, map[string]string(record))
}

// Clear deletes the record for dirID. Clearing an absent record is a no-op.
func (t *Tracker) Clear(dirID string) error {
	if err := checkDirID(dirID); err != nil {
		return err
	}
	if _, err := t.store.DeleteSection(dirID); err != nil {
		return fmt.Errorf("failed to clear completion record for %s: %w", dirID, err)
	}
	return nil
}
