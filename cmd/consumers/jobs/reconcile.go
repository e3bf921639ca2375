package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tpprogramming22/weekendinthecity/internal/service"
)

// Reconciler resolves bookings whose webhook never arrived
type Reconciler interface {
	ReconcileStale(ctx context.Context, olderThan time.Time, limit int) (service.ReconcileStats, error)
}

// ReconcileJob periodically resolves bookings left pending
type ReconcileJob struct {
	reconciler Reconciler
	interval   time.Duration
	after      time.Duration
	batchSize  int
	ticker     *time.Ticker
	done       chan struct{}
	running    sync.Mutex
}

// NewReconcileJob creates a job that checks every interval for bookings pending longer than after
func NewReconcileJob(reconciler Reconciler, interval, after time.Duration, batchSize int) *ReconcileJob {
	return &ReconcileJob{
		reconciler: reconciler,
		interval:   interval,
		after:      after,
		batchSize:  batchSize,
		done:       make(chan struct{}),
	}
}

// Start runs one pass immediately and then one per interval
func (j *ReconcileJob) Start(ctx context.Context) {
	slog.Info("Starting reconcile job", "check_interval", j.interval.String(), "pending_after", j.after.String())

	j.ticker = time.NewTicker(j.interval)

	go j.RunOnce(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.RunOnce(ctx)
			case <-ctx.Done():
				return
			case <-j.done:
				slog.Info("Reconcile job stopped")
				return
			}
		}
	}()
}

// Stop stops scheduling new passes
func (j *ReconcileJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

// RunOnce performs a single pass; overlapping passes are skipped
func (j *ReconcileJob) RunOnce(ctx context.Context) {
	if !j.running.TryLock() {
		slog.Debug("Reconcile pass already running, skipping")
		return
	}
	defer j.running.Unlock()

	stats, err := j.reconciler.ReconcileStale(ctx, time.Now().Add(-j.after), j.batchSize)
	if err != nil {
		slog.Error("Reconcile pass failed", "error", err)
		return
	}
	if stats.Checked == 0 {
		slog.Debug("No stale bookings found")
		return
	}

	slog.Info("Reconcile pass finished",
		"checked", stats.Checked,
		"confirmed", stats.Confirmed,
		"cancelled", stats.Cancelled,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
}
