// Package workers runs background jobs.
package workers

import (
	"context"
	"time"

	"taskinn/internal/settlement"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// PendingReconciler resolves withdrawals still pending at a processor.
type PendingReconciler interface {
	ReconcilePending(ctx context.Context) (*settlement.ReconcileSummary, error)
}

// Reconciler periodically re-checks pending withdrawals.
type Reconciler struct {
	target    PendingReconciler
	interval  time.Duration
	timeout   time.Duration
	scheduler gocron.Scheduler
	logger    *logrus.Entry
}

// NewReconciler schedules target every interval. Each pass gets at most one
// interval to finish.
func NewReconciler(target PendingReconciler, interval time.Duration) (*Reconciler, error) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	r := &Reconciler{
		target:    target,
		interval:  interval,
		timeout:   interval,
		scheduler: sched,
		logger:    logrus.WithField("component", "reconciler"),
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			defer cancel()
			r.RunOnce(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule), // Skip a tick while a pass is still running
		gocron.WithName("reconcile-pending-withdrawals"),
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// RunOnce performs a single reconciliation pass and logs the outcome.
func (r *Reconciler) RunOnce(ctx context.Context) {
	start := time.Now()
	summary, err := r.target.ReconcilePending(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Reconciliation pass failed")
		return
	}
	entry := r.logger.WithFields(logrus.Fields{
		"checked":   summary.Checked,
		"completed": summary.Completed,
		"failed":    summary.Failed,
		"pending":   summary.Pending,
		"errors":    summary.Errors,
		"took":      time.Since(start).String(),
	})
	if summary.Checked == 0 {
		entry.Debug("No pending withdrawals")
		return
	}
	entry.Info("Reconciliation pass finished")
}

// Start begins scheduling.
func (r *Reconciler) Start() {
	r.scheduler.Start()
	r.logger.WithField("interval", r.interval.String()).Info("Reconciler started")
}

// Stop waits for a running pass and stops the scheduler.
func (r *Reconciler) Stop() error {
	return r.scheduler.Shutdown()
}
