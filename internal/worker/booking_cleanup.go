package worker

import (
	"context"
	"time"

	"github.com/clinicdesk/clinic-api/pkg/logger"
)

// ExpiredDeleter is the maintenance operation exposed by the booking core:
// an unconditional bulk delete of bookings dated before the cutoff.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// BookingCleanupWorker periodically removes bookings whose date is more than
// retention in the past. The delete bypasses the booking event pipeline, so
// expired bookings vanish without cancellation notifications or history
// writes.
type BookingCleanupWorker struct {
	deleter   ExpiredDeleter
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
}

func NewBookingCleanupWorker(deleter ExpiredDeleter, retention, interval time.Duration, logger *logger.Logger) *BookingCleanupWorker {
	return &BookingCleanupWorker{
		deleter:   deleter,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

func (w *BookingCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.ZL.Info().
		Dur("interval", w.interval).
		Dur("retention", w.retention).
		Msg("booking cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.ZL.Info().Msg("booking cleanup worker stopping")
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.ZL.Error().Err(err).Msg("booking cleanup failed")
			}
		}
	}
}

func (w *BookingCleanupWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-w.retention)
	count, err := w.deleter.DeleteExpired(ctx, cutoff)
	if err != nil {
		return err
	}
	if count > 0 {
		w.logger.ZL.Info().Int64("count", count).Time("cutoff", cutoff).Msg("cleaned up expired bookings")
	}
	return nil
}
