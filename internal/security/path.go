package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Image extensions accepted for message attachments.
var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ValidateFilePath validates that a file path is safe and doesn't contain directory traversal attempts
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	// Clean the path to resolve any .. or . components
	cleanPath := filepath.Clean(path)

	// Check for directory traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains directory traversal: %s", path)
	}

	return nil
}

// ValidateFilePathWithBase validates a file path against a base directory
func ValidateFilePathWithBase(path, baseDir string) error {
	if err := ValidateFilePath(path); err != nil {
		return err
	}
	if filepath.IsAbs(path) {
		return fmt.Errorf("absolute paths not allowed: %s", path)
	}

	// Ensure the resolved path is still within the base directory
	fullPath := filepath.Clean(filepath.Join(baseDir, path))
	cleanBase := filepath.Clean(baseDir)
	if !strings.HasPrefix(fullPath, cleanBase) {
		return fmt.Errorf("path escapes base directory: %s", path)
	}

	return nil
}

// ValidateImagePath checks that an attachment path is safe and points at a
// supported image type.
func ValidateImagePath(path string) error {
	if err := ValidateFilePath(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !allowedImageExtensions[ext] {
		return fmt.Errorf("unsupported image type: %s", ext)
	}

	return nil
}
