// Package backup implements the file backup-and-restore engine: point-in-time
// captures of project files keyed by original path and reason, an append-only
// JSON log of every capture, restore to the original or an explicit target,
// and age-based retention sweeping of the stored copies.
//
// The engine owns <project_root>/.config_backup/ exclusively. All operations
// are synchronous single-shot calls; concurrent use from multiple processes
// against the same backup root is unsupported.
package backup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"buildfix/internal/fix"
)

// Manager implements fix.BackupStore on the local filesystem.
type Manager struct {
	projectRoot string
	backupDir   string
	log         *Log
	clock       fix.Clock
	logger      fix.Logger
}

var _ fix.BackupStore = (*Manager)(nil)

// NewManager creates a Manager rooted at projectRoot, creating the backup
// directory and an empty log document if they do not exist yet.
func NewManager(projectRoot string, clock fix.Clock, logger fix.Logger) (*Manager, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	backupDir := filepath.Join(root, DirName)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	log := NewLog(filepath.Join(backupDir, LogFileName))
	if err := log.Init(); err != nil {
		return nil, err
	}

	return &Manager{
		projectRoot: root,
		backupDir:   backupDir,
		log:         log,
		clock:       clock,
		logger:      logger,
	}, nil
}

// Dir returns the backup root directory.
func (m *Manager) Dir() string { return m.backupDir }

// Capture copies the file at path into the backup store and appends a record
// to the log. Capturing a path that does not exist is a successful no-op and
// returns (nil, nil): callers capture unconditionally before every rewrite,
// including files they are about to create for the first time.
//
// The copy and the log append are not transactional. An interruption between
// the two leaves a stored file with no log entry, which is tolerated and
// never auto-repaired.
func (m *Manager) Capture(path string, reason string) (*fix.BackupRecord, error) {
	src := m.resolve(path)

	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot capture a directory: %s", src)
	}

	now := m.clock.Now()
	stored, err := StoredPath(m.projectRoot, src, now)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(stored), 0755); err != nil {
		return nil, fmt.Errorf("creating backup subdirectory: %w", err)
	}

	if err := copyFile(src, stored, info); err != nil {
		return nil, fmt.Errorf("copying file to backup store: %w", err)
	}

	rec := fix.BackupRecord{
		Timestamp: now,
		Original:  m.relSlash(src),
		Backup:    m.relSlash(stored),
		Reason:    reason,
		Size:      info.Size(),
	}
	if err := m.log.Append(rec); err != nil {
		return nil, err
	}

	m.logger.Info("file captured", "original", rec.Original, "backup", rec.Backup, "size", rec.Size)
	return &rec, nil
}

// Restore copies a stored backup back to its original location, or to target
// if target is non-empty. It operates purely on the physical store and never
// consults the log, so a backup whose record pre-dates a log reset (or whose
// record is all that sweeping left behind) restores normally as long as the
// stored file remains.
func (m *Manager) Restore(backupPath string, target string) (string, error) {
	stored := m.resolve(backupPath)

	info, err := os.Stat(stored)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", backupPath, fix.ErrBackupMissing)
		}
		return "", fmt.Errorf("stat backup file: %w", err)
	}

	if target == "" {
		target, err = OriginalPath(m.projectRoot, stored)
		if err != nil {
			return "", err
		}
	} else {
		target = m.resolve(target)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("creating target directory: %w", err)
	}

	if err := copyFile(stored, target, info); err != nil {
		return "", fmt.Errorf("restoring file: %w", err)
	}

	m.logger.Info("file restored", "backup", m.relSlash(stored), "target", m.relSlash(target))
	return target, nil
}

// List returns all log records in insertion order, oldest first. Records
// whose stored file has been swept away are included; restore failure is the
// signal that a listed backup is gone.
func (m *Manager) List() ([]fix.BackupRecord, error) {
	return m.log.Read()
}

// Cleanup removes stored backup files whose modification time is older than
// maxAgeDays, then prunes any directories left empty, bottom-up. The log is
// never modified. Idempotent: a second run with no intervening captures
// removes nothing.
func (m *Manager) Cleanup(maxAgeDays int) (int, error) {
	cutoff := m.clock.Now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)

	removed := 0
	var dirs []string

	err := filepath.WalkDir(m.backupDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != m.backupDir {
				dirs = append(dirs, p)
			}
			return nil
		}
		if !IsStoredName(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(p); err != nil {
				return fmt.Errorf("removing %s: %w", p, err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("sweeping backup store: %w", err)
	}

	// Deepest directories first so emptied parents are seen after their children.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, fmt.Errorf("reading %s: %w", dir, err)
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil {
				return removed, fmt.Errorf("removing empty directory %s: %w", dir, err)
			}
		}
	}

	m.logger.Info("old backups cleaned up", "removed", removed, "max_age_days", maxAgeDays)
	return removed, nil
}

// resolve interprets p relative to the project root unless it is absolute.
func (m *Manager) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.projectRoot, p)
}

// relSlash renders a path relative to the project root with forward slashes,
// the form used in log records.
func (m *Manager) relSlash(p string) string {
	rel, err := filepath.Rel(m.projectRoot, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// copyFile copies content and metadata (mode and mtime) from src to dst,
// overwriting dst if it exists. A failed copy removes the partial dst.
func copyFile(src string, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying content: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("closing destination: %w", err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("setting file times: %w", err)
	}
	return nil
}
