package ingest

import (
	"context"
	"log"
	"sync"
	"time"
)

// Refresher periodically rescans the archive directory for documents that
// have not been ingested yet. Acquiring new documents (scraping, download)
// is an external collaborator's job; anything it drops into the archive is
// picked up on the next tick.
type Refresher struct {
	importer *Importer
	dir      string
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	lastRun time.Time
}

// NewRefresher builds a refresher over the archive dir. interval defaults
// to 24h when zero.
func NewRefresher(importer *Importer, dir string, interval time.Duration, logger *log.Logger) *Refresher {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Refresher{importer: importer, dir: dir, interval: interval, logger: logger}
}

// Run scans once immediately, then on every tick until ctx is done.
// Documents are processed strictly one at a time.
func (r *Refresher) Run(ctx context.Context) {
	r.scan()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.scan()
		}
	}
}

func (r *Refresher) scan() {
	r.mu.Lock()
	r.lastRun = time.Now()
	r.mu.Unlock()
	r.importer.ImportArchive(r.dir)
}

// Interval returns the configured tick interval.
func (r *Refresher) Interval() time.Duration { return r.interval }

// NextRun estimates the next scan time based on the last started scan.
func (r *Refresher) NextRun() time.Time {
	r.mu.Lock()
	last := r.lastRun
	r.mu.Unlock()
	if last.IsZero() {
		return time.Now()
	}
	return last.Add(r.interval)
}
