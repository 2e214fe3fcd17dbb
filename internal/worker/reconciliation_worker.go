package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ayo6706/org-balance-ledger/internal/observability"
	"github.com/ayo6706/org-balance-ledger/internal/repository"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultReconciliationSchedule = "@every 1h"

// Reconciler is satisfied by *service.ReconciliationService.
type Reconciler interface {
	Run(ctx context.Context) ([]repository.BalanceMismatch, error)
}

// ReconciliationWorker runs ledger reconciliation on a cron schedule.
type ReconciliationWorker struct {
	svc      Reconciler
	spec     string
	schedule cron.Schedule
	cron     *cron.Cron
	stopCh   chan struct{}
	stopOnce sync.Once
	initial  sync.WaitGroup
}

// NewReconciliationWorker parses schedule, a standard five-field cron
// expression or a descriptor such as "@every 30m".
func NewReconciliationWorker(svc Reconciler, schedule string) (*ReconciliationWorker, error) {
	if schedule == "" {
		schedule = DefaultReconciliationSchedule
	}
	parsed, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid reconciliation schedule %q: %w", schedule, err)
	}
	return &ReconciliationWorker{
		svc:      svc,
		spec:     schedule,
		schedule: parsed,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		stopCh:   make(chan struct{}),
	}, nil
}

// Run starts the schedule, runs one reconciliation immediately and returns a
// stop function. The schedule also stops when ctx is canceled.
func (w *ReconciliationWorker) Run(ctx context.Context) func() {
	w.cron.Schedule(w.schedule, cron.FuncJob(func() { w.RunOnce(ctx) }))
	zap.L().Info("reconciliation worker starting", zap.String("schedule", w.spec))
	w.initial.Add(1)
	go func() {
		defer w.initial.Done()
		w.RunOnce(ctx)
	}()
	w.cron.Start()

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.stopCh:
		}
	}()
	return w.Stop
}

// Stop stops the schedule and waits for running reconciliations, the
// start-up one included, to finish.
func (w *ReconciliationWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.cron.Stop().Done()
		w.initial.Wait()
		zap.L().Info("reconciliation worker stopped")
	})
}

// RunOnce performs a single reconciliation pass.
func (w *ReconciliationWorker) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := w.svc.Run(ctx); err != nil {
		observability.IncrementWorkerRun("reconciliation", "failed")
		zap.L().Error("reconciliation run failed", zap.Error(err))
		return
	}
	observability.IncrementWorkerRun("reconciliation", "success")
}
