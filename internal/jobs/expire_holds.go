package jobs

import (
	"context"

	"hotel-booking-backend/internal/logger"
)

// SweepResult tallies one pass of the expired-hold sweep.
type SweepResult struct {
	Scanned  int
	Released int
	Skipped  int
	Failed   int
}

// ExpireHolds releases PENDING holds whose TTL has passed. Scheduled entry point.
func (jr *JobRunner) ExpireHolds() {
	jr.runWithRecovery(JobExpireHolds, func() {
		res := jr.ExpireHoldsOnce(context.Background())
		if res.Scanned > 0 {
			logger.Info("Expired holds swept",
				"scanned", res.Scanned,
				"released", res.Released,
				"skipped", res.Skipped,
				"failed", res.Failed)
		}
	})
}

// ExpireHoldsOnce runs one bounded sweep. Each hold is released in its own
// transaction so a failure on one id never blocks the rest of the batch.
func (jr *JobRunner) ExpireHoldsOnce(ctx context.Context) SweepResult {
	var res SweepResult
	log := logger.WithJob(JobExpireHolds)

	ids, err := jr.reservations.ListExpiredPending(ctx, jr.clock.Now(), jr.config.Reaper.BatchSize)
	if err != nil {
		log.Error("Failed to list expired holds", "error", err)
		return res
	}
	res.Scanned = len(ids)

	for _, id := range ids {
		released, err := jr.lifecycle.ReleaseExpired(ctx, id)
		switch {
		case err != nil:
			res.Failed++
			log.Error("Failed to release expired hold", "reservation_id", id, "error", err)
		case released:
			res.Released++
		default:
			// Confirmed or cancelled between the scan and the lock.
			res.Skipped++
			log.Debug("Hold no longer expirable", "reservation_id", id)
		}
	}
	return res
}
