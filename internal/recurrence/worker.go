package recurrence

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Worker runs a batch pass at startup and then once per interval until its context ends.
type Worker struct {
	scheduler *Scheduler
	interval  time.Duration
	logger    *logrus.Logger
}

func NewWorker(scheduler *Scheduler, interval time.Duration, logger *logrus.Logger) *Worker {
	return &Worker{scheduler: scheduler, interval: interval, logger: logger}
}

func (w *Worker) Run(ctx context.Context) {
	w.logger.WithField("interval", w.interval.String()).Info("RecurrenceWorker.Run.starting")
	w.pass(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("RecurrenceWorker.Run.stopped")
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

func (w *Worker) pass(ctx context.Context) {
	if _, err := w.scheduler.ProcessDue(ctx); err != nil {
		w.logger.WithError(err).Error("RecurrenceWorker.pass.failed")
	}
}
