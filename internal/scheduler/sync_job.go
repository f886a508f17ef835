package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// SyncFunc runs one statement sync over the default symbols.
type SyncFunc func(ctx context.Context) error

// ScheduleSync registers sync on spec. Failures are logged; the run
// itself has already written its audit row.
func (r *Runner) ScheduleSync(spec string, sync SyncFunc) (cron.EntryID, error) {
	id, err := r.Add(spec, func(ctx context.Context) {
		r.logger.Info().Msg("scheduled sync starting")
		if err := sync(ctx); err != nil {
			r.logger.Error().Err(err).Msg("scheduled sync failed")
			return
		}
		r.logger.Info().Msg("scheduled sync done")
	})
	if err != nil {
		return 0, err
	}
	event := r.logger.Info().Str("spec", spec)
	if sched, err := parser.Parse(spec); err == nil {
		event = event.Time("next", sched.Next(time.Now()))
	}
	event.Msg("sync scheduled")
	return id, nil
}
