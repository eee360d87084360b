package safeio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// CleanRelPath cleans a manifest-relative path and rejects traversal attempts
// and absolute paths. Returns paths with forward slashes for cross-platform
// consistency.
func CleanRelPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return "", errors.New("absolute path not allowed")
	}
	c := filepath.Clean(p)
	if c == ".." || strings.HasPrefix(c, ".."+string(filepath.Separator)) || strings.Contains(c, "..") {
		return "", errors.New("path traversal detected")
	}
	return filepath.ToSlash(c), nil
}

// Contained reports whether path resolves to a location inside baseDir.
func Contained(baseDir, path string) (bool, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return false, errors.New("failed to resolve base directory")
	}
	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return false, errors.New("failed to resolve path")
	}
	rel, err := filepath.Rel(baseAbs, pathAbs)
	if err != nil {
		return false, errors.New("failed to compute relative path")
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}

// WriteFilePreservePerms writes data to path preserving existing file mode when possible.
// When the file does not exist, it uses a sane default of 0644.
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
