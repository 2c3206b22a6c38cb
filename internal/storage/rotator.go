package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/benbjohnson/clock"
)

const pruneEvery = 6 * time.Hour

// Rotator deletes event-log files older than the retention window.
type Rotator struct {
	logDir        string
	retentionDays int
	clock         clock.Clock
	log           *slog.Logger
}

var filenamePattern = regexp.MustCompile(`^traffic-(\d{4}-\d{2}-\d{2})\.ndjson$`)

func NewRotator(logDir string, retentionDays int, clk clock.Clock, log *slog.Logger) *Rotator {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Rotator{
		logDir:        logDir,
		retentionDays: retentionDays,
		clock:         clk,
		log:           log,
	}
}

// Run prunes once immediately and then every six hours until ctx is done.
func (r *Rotator) Run(ctx context.Context) error {
	ticker := r.clock.Ticker(pruneEvery)
	defer ticker.Stop()

	r.Prune()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Prune()
		}
	}
}

// Prune removes expired files and returns how many were deleted.
func (r *Rotator) Prune() int {
	entries, err := os.ReadDir(r.logDir)
	if err != nil {
		r.log.Warn("event log prune skipped", "dir", r.logDir, "error", err)
		return 0
	}

	cutoff := r.clock.Now().UTC().AddDate(0, 0, -r.retentionDays)

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := filenamePattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}

		fileDate, err := time.Parse("2006-01-02", matches[1])
		if err != nil {
			continue
		}

		if fileDate.Before(cutoff) {
			filePath := filepath.Join(r.logDir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				r.log.Warn("failed to remove expired event log", "file", filePath, "error", err)
				continue
			}
			removed++
		}
	}

	return removed
}
