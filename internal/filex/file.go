// Package filex has small filesystem helpers for the client's data directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDataDir creates dirName (and parents) with owner-only group access.
// Relative names are resolved against the working directory.
func EnsureDataDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ReadImage reads a preview image from disk and reports its content type
// from the file extension. Unknown extensions are sent as octet-stream.
func ReadImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".png", ".PNG":
		return data, "image/png", nil
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		return data, "image/jpeg", nil
	case ".webp":
		return data, "image/webp", nil
	default:
		return data, "application/octet-stream", nil
	}
}
