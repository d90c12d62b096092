package fix

import (
	"errors"
	"time"
)

// ErrBackupMissing reports a restore request for a stored backup file that no
// longer exists on disk. This is an expected condition (retention sweeping
// removes stored files without touching the log), so callers should treat it
// as a non-fatal failure rather than a fault.
var ErrBackupMissing = errors.New("backup file does not exist")

// BackupRecord is one entry in the backup log: a single point-in-time capture
// of a tracked file. Records are append-only; they are never rewritten or
// deleted, even after the stored copy is removed by retention sweeping.
type BackupRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Original  string    `json:"original"` // source path, relative to the project root
	Backup    string    `json:"backup"`   // stored copy path, relative to the project root
	Reason    string    `json:"reason"`
	Size      int64     `json:"size"`
}

// BackupStore captures point-in-time copies of files before destructive
// rewrites and restores them later. Implementations own the backup directory
// tree and its log exclusively.
type BackupStore interface {
	// Capture copies the file at path into the store and appends a log
	// record. Capturing a path that does not exist is a successful no-op
	// and returns (nil, nil).
	Capture(path string, reason string) (*BackupRecord, error)

	// Restore copies a stored backup back over its original location, or to
	// target if target is non-empty. The stored path may be given relative
	// to the project root or absolute. Returns the path written. Returns an
	// error wrapping ErrBackupMissing if the stored file does not exist.
	Restore(backupPath string, target string) (string, error)

	// List returns all log records in insertion order, oldest first.
	// Records whose stored file has been swept away are still included.
	List() ([]BackupRecord, error)

	// Cleanup removes stored files older than maxAgeDays and prunes
	// directories left empty. The log is never modified. Returns the number
	// of files removed.
	Cleanup(maxAgeDays int) (int, error)
}
