// Package tempdir manages the scoped directories used to exchange descriptor
// bytes with external compilers.
package tempdir

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	wiregenSubdir = "wiregen"
	// MaxAge is how long a directory may live before Sweep considers it
	// abandoned by a killed process.
	MaxAge = 60 * time.Minute
)

// Base returns the directory that holds every scoped directory. An empty
// root means the system temp directory.
func Base(root string) string {
	if root == "" {
		root = os.TempDir()
	}
	return filepath.Join(root, wiregenSubdir)
}

// New creates a fresh directory under Base(root). The caller owns it and
// must release it with Remove.
func New(root string) (string, error) {
	baseDir := Base(root)

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return "", err
	}

	return os.MkdirTemp(baseDir, "descriptor-*")
}

// Remove deletes dir and everything in it.
func Remove(dir string) error {
	return os.RemoveAll(dir)
}

// Sweep removes directories under Base(root) older than maxAge and returns
// how many were removed.
func Sweep(root string, maxAge time.Duration, logger logrus.FieldLogger) int {
	baseDir := Base(root)

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).Warn("Failed to read wiregen temp directory")
		}
		return 0
	}

	removed := 0
	now := time.Now()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logger.WithError(err).WithField("name", entry.Name()).Warn("Failed to get info for temp folder")
			continue
		}

		age := now.Sub(info.ModTime())
		if age <= maxAge {
			continue
		}
		path := filepath.Join(baseDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.WithError(err).WithField("path", path).Warn("Failed to remove old temp folder")
			continue
		}
		logger.WithFields(logrus.Fields{"path": path, "age": age}).Debug("Cleaned up old temp folder")
		removed++
	}
	return removed
}
