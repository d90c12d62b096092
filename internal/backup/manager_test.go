package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"buildfix/internal/fix"
	"buildfix/internal/testutil"
)

func newTestManager(t *testing.T, clock fix.Clock) (*Manager, string) {
	t.Helper()

	root := t.TempDir()
	m, err := NewManager(root, clock, fix.NewNopLogger())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m, root
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestManager_Capture(t *testing.T) {
	t.Run("captures file and appends record", func(t *testing.T) {
		m, root := newTestManager(t, testutil.FixedClock())
		writeFile(t, filepath.Join(root, "build.gradle.kts"), "plugins {}")

		rec, err := m.Capture("build.gradle.kts", "pre-fix")
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
		if rec == nil {
			t.Fatal("Capture() = nil record for existing file")
		}

		if rec.Original != "build.gradle.kts" {
			t.Errorf("Original = %q, want %q", rec.Original, "build.gradle.kts")
		}
		if rec.Backup != ".config_backup/build.gradle.kts.backup.20240115_103000" {
			t.Errorf("Backup = %q", rec.Backup)
		}
		if rec.Reason != "pre-fix" {
			t.Errorf("Reason = %q, want %q", rec.Reason, "pre-fix")
		}
		if rec.Size != int64(len("plugins {}")) {
			t.Errorf("Size = %d, want %d", rec.Size, len("plugins {}"))
		}

		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rec.Backup)))
		if err != nil {
			t.Fatalf("reading stored file: %v", err)
		}
		if string(data) != "plugins {}" {
			t.Errorf("stored content = %q, want %q", data, "plugins {}")
		}

		records, err := m.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("len(records) = %d, want 1", len(records))
		}
	})

	t.Run("nested file mirrors directory structure", func(t *testing.T) {
		m, root := newTestManager(t, testutil.FixedClock())
		writeFile(t, filepath.Join(root, "feature", "chat", "build.gradle.kts"), "x")

		rec, err := m.Capture(filepath.Join("feature", "chat", "build.gradle.kts"), "pre-fix")
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
		if rec.Backup != ".config_backup/feature/chat/build.gradle.kts.backup.20240115_103000" {
			t.Errorf("Backup = %q", rec.Backup)
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rec.Backup))); err != nil {
			t.Errorf("stored file not created: %v", err)
		}
	})

	t.Run("missing source is a silent no-op", func(t *testing.T) {
		m, _ := newTestManager(t, testutil.FixedClock())

		rec, err := m.Capture("does-not-exist.kts", "pre-fix")
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}
		if rec != nil {
			t.Errorf("Capture() = %+v, want nil for missing source", rec)
		}

		records, err := m.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 0 {
			t.Errorf("len(records) = %d, want 0", len(records))
		}
	})

	t.Run("directory cannot be captured", func(t *testing.T) {
		m, root := newTestManager(t, testutil.FixedClock())
		if err := os.MkdirAll(filepath.Join(root, "feature"), 0755); err != nil {
			t.Fatal(err)
		}

		if _, err := m.Capture("feature", "pre-fix"); err == nil {
			t.Error("Capture() expected error for directory")
		}
	})

	t.Run("second capture of same file appends a second record", func(t *testing.T) {
		clock := testutil.FixedClock()
		m, root := newTestManager(t, clock)
		writeFile(t, filepath.Join(root, "gradle.properties"), "v1")

		if _, err := m.Capture("gradle.properties", "first"); err != nil {
			t.Fatalf("first Capture() error = %v", err)
		}

		clock.Advance(time.Minute)
		writeFile(t, filepath.Join(root, "gradle.properties"), "v2")
		if _, err := m.Capture("gradle.properties", "second"); err != nil {
			t.Fatalf("second Capture() error = %v", err)
		}

		records, err := m.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("len(records) = %d, want 2", len(records))
		}
		if records[0].Reason != "first" || records[1].Reason != "second" {
			t.Errorf("record order = %q, %q; want first, second", records[0].Reason, records[1].Reason)
		}
	})

	t.Run("same-second captures collide on one stored file", func(t *testing.T) {
		m, root := newTestManager(t, testutil.FixedClock())
		writeFile(t, filepath.Join(root, "gradle.properties"), "v1")

		if _, err := m.Capture("gradle.properties", "first"); err != nil {
			t.Fatalf("first Capture() error = %v", err)
		}
		writeFile(t, filepath.Join(root, "gradle.properties"), "v2")
		rec, err := m.Capture("gradle.properties", "second")
		if err != nil {
			t.Fatalf("second Capture() error = %v", err)
		}

		// The later capture overwrote the earlier stored file, but both
		// log records remain.
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rec.Backup)))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "v2" {
			t.Errorf("stored content = %q, want %q", data, "v2")
		}

		records, err := m.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 2 {
			t.Errorf("len(records) = %d, want 2", len(records))
		}
	})
}

func TestManager_Restore(t *testing.T) {
	t.Run("restores to original location by default", func(t *testing.T) {
		m, root := newTestManager(t, testutil.FixedClock())
		original := filepath.Join(root, "config", "build.gradle.kts")
		writeFile(t, original, "good config")

		rec, err := m.Capture(original, "pre-fix")
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}

		// Clobber the original, then restore over it.
		writeFile(t, original, "broken")
		restored, err := m.Restore(rec.Backup, "")
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if restored != original {
			t.Errorf("Restore() = %q, want %q", restored, original)
		}

		data, err := os.ReadFile(original)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "good config" {
			t.Errorf("restored content = %q, want %q", data, "good config")
		}
	})

	t.Run("restores to explicit target", func(t *testing.T) {
		m, root := newTestManager(t, testutil.FixedClock())
		writeFile(t, filepath.Join(root, "gradle.properties"), "content")

		rec, err := m.Capture("gradle.properties", "pre-fix")
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}

		target := filepath.Join(root, "restored", "gradle.properties")
		restored, err := m.Restore(rec.Backup, target)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if restored != target {
			t.Errorf("Restore() = %q, want %q", restored, target)
		}
		if _, err := os.Stat(target); err != nil {
			t.Errorf("target not created: %v", err)
		}
	})

	t.Run("missing backup fails with ErrBackupMissing", func(t *testing.T) {
		m, _ := newTestManager(t, testutil.FixedClock())

		_, err := m.Restore(".config_backup/gone.backup.20240101_000000", "")
		if !errors.Is(err, fix.ErrBackupMissing) {
			t.Errorf("Restore() error = %v, want ErrBackupMissing", err)
		}
	})

	t.Run("restore ignores the log", func(t *testing.T) {
		m, root := newTestManager(t, testutil.FixedClock())
		writeFile(t, filepath.Join(root, "gradle.properties"), "content")

		rec, err := m.Capture("gradle.properties", "pre-fix")
		if err != nil {
			t.Fatalf("Capture() error = %v", err)
		}

		// Wipe the log. The stored file alone is enough to restore.
		if err := os.WriteFile(filepath.Join(m.Dir(), LogFileName), []byte("[]"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := m.Restore(rec.Backup, ""); err != nil {
			t.Errorf("Restore() error = %v, want nil", err)
		}
	})
}

func TestManager_Cleanup(t *testing.T) {
	// age sets a stored file's mtime to days in the past.
	age := func(t *testing.T, path string, days int) {
		t.Helper()
		old := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("removes only expired files", func(t *testing.T) {
		m, root := newTestManager(t, fix.RealClock{})
		writeFile(t, filepath.Join(root, "old.txt"), "old")
		writeFile(t, filepath.Join(root, "fresh.txt"), "fresh")

		oldRec, err := m.Capture("old.txt", "pre-fix")
		if err != nil {
			t.Fatal(err)
		}
		freshRec, err := m.Capture("fresh.txt", "pre-fix")
		if err != nil {
			t.Fatal(err)
		}
		age(t, filepath.Join(root, filepath.FromSlash(oldRec.Backup)), 10)

		removed, err := m.Cleanup(7)
		if err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}
		if removed != 1 {
			t.Errorf("Cleanup() = %d, want 1", removed)
		}

		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(oldRec.Backup))); !os.IsNotExist(err) {
			t.Error("expired stored file still exists")
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(freshRec.Backup))); err != nil {
			t.Errorf("fresh stored file removed: %v", err)
		}
	})

	t.Run("never touches the log", func(t *testing.T) {
		m, root := newTestManager(t, fix.RealClock{})
		writeFile(t, filepath.Join(root, "old.txt"), "old")

		rec, err := m.Capture("old.txt", "pre-fix")
		if err != nil {
			t.Fatal(err)
		}
		age(t, filepath.Join(root, filepath.FromSlash(rec.Backup)), 10)

		// Age the log file too; it must survive regardless.
		logPath := filepath.Join(m.Dir(), LogFileName)
		age(t, logPath, 30)

		if _, err := m.Cleanup(7); err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}

		if _, err := os.Stat(logPath); err != nil {
			t.Fatalf("log file removed by cleanup: %v", err)
		}
		records, err := m.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 1 {
			t.Errorf("len(records) = %d, want 1 (records survive sweeping)", len(records))
		}
	})

	t.Run("prunes emptied directories", func(t *testing.T) {
		m, root := newTestManager(t, fix.RealClock{})
		writeFile(t, filepath.Join(root, "feature", "chat", "build.gradle.kts"), "x")

		rec, err := m.Capture(filepath.Join("feature", "chat", "build.gradle.kts"), "pre-fix")
		if err != nil {
			t.Fatal(err)
		}
		age(t, filepath.Join(root, filepath.FromSlash(rec.Backup)), 10)

		if _, err := m.Cleanup(7); err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}

		if _, err := os.Stat(filepath.Join(m.Dir(), "feature")); !os.IsNotExist(err) {
			t.Error("emptied backup subdirectory not pruned")
		}
		if _, err := os.Stat(m.Dir()); err != nil {
			t.Errorf("backup root removed: %v", err)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		m, root := newTestManager(t, fix.RealClock{})
		writeFile(t, filepath.Join(root, "old.txt"), "old")

		rec, err := m.Capture("old.txt", "pre-fix")
		if err != nil {
			t.Fatal(err)
		}
		age(t, filepath.Join(root, filepath.FromSlash(rec.Backup)), 10)

		first, err := m.Cleanup(7)
		if err != nil {
			t.Fatalf("first Cleanup() error = %v", err)
		}
		if first != 1 {
			t.Errorf("first Cleanup() = %d, want 1", first)
		}

		second, err := m.Cleanup(7)
		if err != nil {
			t.Fatalf("second Cleanup() error = %v", err)
		}
		if second != 0 {
			t.Errorf("second Cleanup() = %d, want 0", second)
		}
	})

	t.Run("swept backup no longer restores but stays listed", func(t *testing.T) {
		m, root := newTestManager(t, fix.RealClock{})
		writeFile(t, filepath.Join(root, "old.txt"), "old")

		rec, err := m.Capture("old.txt", "pre-fix")
		if err != nil {
			t.Fatal(err)
		}
		age(t, filepath.Join(root, filepath.FromSlash(rec.Backup)), 10)

		if _, err := m.Cleanup(7); err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}

		records, err := m.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("len(records) = %d, want 1", len(records))
		}

		_, err = m.Restore(records[0].Backup, "")
		if !errors.Is(err, fix.ErrBackupMissing) {
			t.Errorf("Restore() error = %v, want ErrBackupMissing", err)
		}
	})
}
