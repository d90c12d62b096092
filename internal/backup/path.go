package backup

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DirName is the backup root directory, relative to the project root.
	DirName = ".config_backup"

	// LogFileName is the backup log document inside the backup root.
	LogFileName = "backup_log.json"

	// suffixMarker separates the original file name from the capture
	// timestamp in a stored file name.
	suffixMarker = ".backup."

	// nameTimeLayout is the capture timestamp embedded in stored file
	// names. Second granularity: two captures of the same file within the
	// same second collide and the later one overwrites the earlier.
	nameTimeLayout = "20060102_150405"
)

// StoredPath maps an original file path to its stored backup path for a
// capture at time t. The stored file keeps the original's directory
// structure under the backup root and embeds the capture timestamp:
//
//	<root>/.config_backup/<original_relative_dir>/<name>.backup.<YYYYMMDD_HHMMSS>
//
// Pure mapping: no filesystem access. The original path must be inside the
// project root and must not already be inside the backup root.
func StoredPath(projectRoot string, originalPath string, t time.Time) (string, error) {
	rel, err := filepath.Rel(projectRoot, originalPath)
	if err != nil {
		return "", fmt.Errorf("computing path relative to project root: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path is outside the project root: %s", originalPath)
	}
	if rel == DirName || strings.HasPrefix(rel, DirName+string(filepath.Separator)) {
		return "", fmt.Errorf("path is inside the backup directory: %s", originalPath)
	}

	name := filepath.Base(rel) + suffixMarker + t.Format(nameTimeLayout)
	return filepath.Join(projectRoot, DirName, filepath.Dir(rel), name), nil
}

// OriginalPath reverses StoredPath: given a stored backup path it
// reconstructs the original file's location under the project root by
// stripping the ".backup.<timestamp>" suffix and un-mirroring the directory
// structure. The stored path must be inside the backup root.
func OriginalPath(projectRoot string, storedPath string) (string, error) {
	backupRoot := filepath.Join(projectRoot, DirName)

	rel, err := filepath.Rel(backupRoot, storedPath)
	if err != nil {
		return "", fmt.Errorf("computing path relative to backup root: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path is not inside the backup directory: %s", storedPath)
	}

	base := filepath.Base(rel)
	idx := strings.Index(base, suffixMarker)
	if idx <= 0 {
		return "", fmt.Errorf("not a backup file name: %s", base)
	}

	return filepath.Join(projectRoot, filepath.Dir(rel), base[:idx]), nil
}

// IsStoredName reports whether a file name follows the stored backup naming
// scheme. The retention sweeper uses this to avoid touching the backup log
// or anything else that may share the tree.
func IsStoredName(name string) bool {
	return strings.Contains(name, suffixMarker)
}
