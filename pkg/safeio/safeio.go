package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanUserPath cleans a user-provided path and rejects traversal attempts.
// Returns paths with forward slashes for cross-platform consistency.
func CleanUserPath(p string) (string, error) {
	c := filepath.Clean(p)
	if strings.Contains(c, "..") {
		return "", errors.New("path traversal detected")
	}
	return filepath.ToSlash(c), nil
}

// WriteFilePreservePerms writes data to path preserving existing file mode
// when possible. When the file does not exist, it uses a sane default of 0644.
func WriteFilePreservePerms(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	return os.WriteFile(path, data, mode)
}

// renameFile is swapped out by tests that simulate a crash during the
// final swap step.
var renameFile = os.Rename

// WriteFileAtomic writes data to path so that readers never observe a
// half-written file: the bytes are materialized in a temporary file in
// the same directory, synced, and then renamed over the target. On any
// failure the target is left exactly as it was and the temporary file is
// discarded.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// The temp file only survives on the failure paths.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if err := renameFile(tmpName, path); err != nil {
		return fmt.Errorf("swapping into place: %w", err)
	}
	return nil
}

// BackupTimestampLayout names backup files down to the second, zone-free
// so names sort lexically in time order.
const BackupTimestampLayout = "20060102-150405"

// BackupPath derives the sibling backup path for a store file at the
// given instant, e.g. hooks.json -> hooks.json.20250102-150405.bak.
func BackupPath(path string, at time.Time) string {
	return fmt.Sprintf("%s.%s.bak", path, at.UTC().Format(BackupTimestampLayout))
}

// WriteBackup copies raw bytes to the timestamped sibling of path and
// returns the backup path. Backups are never overwritten: if the derived
// name already exists (two backups within one second), a numeric suffix
// disambiguates.
func WriteBackup(path string, data []byte, at time.Time) (string, error) {
	backup := BackupPath(path, at)
	candidate := backup
	for i := 1; ; i++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			if _, werr := f.Write(data); werr != nil {
				_ = f.Close()
				return "", fmt.Errorf("writing backup %s: %w", candidate, werr)
			}
			if cerr := f.Close(); cerr != nil {
				return "", fmt.Errorf("closing backup %s: %w", candidate, cerr)
			}
			return candidate, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("creating backup %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s.%d", backup, i)
	}
}
