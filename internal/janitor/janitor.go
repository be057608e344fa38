// Package janitor removes expired job directories from the work root.
package janitor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const defaultInterval = time.Hour

// Janitor periodically deletes job directories whose last modification
// is older than the retention window. Mirrored copies are unaffected.
type Janitor struct {
	root     string
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func New(root string, maxAge time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		root:     root,
		maxAge:   maxAge,
		interval: defaultInterval,
		logger:   logger,
	}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	j.sweep()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	entries, err := os.ReadDir(j.root)
	if err != nil {
		if !os.IsNotExist(err) && j.logger != nil {
			j.logger.Warn("failed to read work root", "path", j.root, "error", err)
		}
		return
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(j.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			if j.logger != nil {
				j.logger.Warn("failed to remove expired job dir", "path", path, "error", err)
			}
			continue
		}
		removed++
	}

	if removed > 0 && j.logger != nil {
		j.logger.Info("removed expired job dirs", "count", removed)
	}
}
