package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSyncInterval is how often the worker replays the ledger when no
// interval is configured.
const DefaultSyncInterval = time.Minute

// SyncWorker is a background worker that periodically reconciles the
// search index with the record store by replaying the sync ledger.
type SyncWorker struct {
	syncService *SyncService
	logger      zerolog.Logger
	interval    time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	mu          sync.Mutex
	running     bool
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(syncService *SyncService, logger zerolog.Logger, interval time.Duration) *SyncWorker {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	return &SyncWorker{
		syncService: syncService,
		logger:      logger.With().Str("component", "sync_worker").Logger(),
		interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background reconciliation loop
func (w *SyncWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().Dur("interval", w.interval).Msg("Starting sync worker")

	go w.run(ctx)
}

// Stop gracefully stops the sync worker
func (w *SyncWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	// Flip under the lock so a second Stop cannot also reach the close.
	w.running = false
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping sync worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Sync worker stopped")
}

// run is the main loop for the sync worker
func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Run immediately on startup to drain anything left from a previous run
	w.pass()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-w.stopCh:
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-ticker.C:
			w.pass()
		}
	}
}

func (w *SyncWorker) pass() {
	result, err := w.syncService.Synchronize()
	if err != nil {
		w.logger.Error().Err(err).Msg("Sync pass failed")
		return
	}
	if result.Outstanding > 0 {
		w.logger.Debug().
			Int("outstanding", result.Outstanding).
			Int("replayed", result.Replayed).
			Int("failed", result.Failed).
			Msg("Sync pass completed")
	}
}

// TriggerSync runs one reconciliation pass outside the schedule. Serves
// the manual admin trigger.
func (w *SyncWorker) TriggerSync() (*SyncResult, error) {
	w.logger.Debug().Msg("Manual sync triggered")
	return w.syncService.Synchronize()
}

// IsRunning returns whether the worker is currently running
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
