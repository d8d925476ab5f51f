package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for paths that cannot be used for data files.
var ErrUnsafePath = errors.New("unsafe path")

// CleanDataPath rejects empty paths and control characters and returns the
// cleaned absolute form.
func CleanDataPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty", ErrUnsafePath)
	}
	if strings.ContainsAny(path, "\x00\r\n") {
		return "", fmt.Errorf("%w: control characters", ErrUnsafePath)
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	return abs, nil
}

// EnsureFileDir validates a data file path and creates its parent directory.
func EnsureFileDir(path string) (string, error) {
	clean, err := CleanDataPath(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0o750); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", clean, err)
	}
	return clean, nil
}
