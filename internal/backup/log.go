package backup

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"buildfix/internal/fix"
)

// Log is the append-only backup log: a single JSON array document that is
// the source of truth for what was ever captured, for which original file,
// why, and when. The document is rewritten in full on every append.
//
// The log is deliberately never pruned: retention sweeping removes stored
// files but leaves their records in place as an audit trail, so the log may
// reference backups that no longer exist on disk.
type Log struct {
	path string
}

// NewLog creates a Log backed by the document at path.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Init creates an empty log document if none exists yet.
func (l *Log) Init() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat backup log: %w", err)
	}
	if err := os.WriteFile(l.path, []byte("[]"), 0644); err != nil {
		return fmt.Errorf("initializing backup log: %w", err)
	}
	return nil
}

// Read returns all records in insertion order, oldest first.
// A missing log document reads as empty.
func (l *Log) Read() ([]fix.BackupRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup log: %w", err)
	}

	var records []fix.BackupRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding backup log: %w", err)
	}
	return records, nil
}

// Append adds one record to the end of the log and persists the full
// document. Existing records are never rewritten or dropped.
func (l *Log) Append(rec fix.BackupRecord) error {
	records, err := l.Read()
	if err != nil {
		return err
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup log: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("writing backup log: %w", err)
	}
	return nil
}
