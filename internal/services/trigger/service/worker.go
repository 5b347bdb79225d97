package service

import (
	"context"
	"time"

	"cfgvault/internal/platform/logger"
)

// Run drives the trigger loops until ctx is canceled.
// One goroutine owns all firing, so scheduled, change-driven, and manual
// backups are strictly serialized
func (s *Svc) Run(ctx context.Context) error {
	l := logger.C(ctx).With().Str("mod", "trigger").Logger()
	l.Info().
		Str("device_id", s.config.DeviceID).
		Dur("schedule_every", s.config.ScheduleEvery).
		Dur("rate_every", s.config.RateEvery).
		Msg("trigger: worker starting")

	schedT := time.NewTicker(s.config.ScheduleEvery)
	defer schedT.Stop()
	rateT := time.NewTicker(s.config.RateEvery)
	defer rateT.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-schedT.C:
			s.poll(ctx, "schedule", s.PollSchedule)
		case <-rateT.C:
			s.poll(ctx, "rate", s.PollRate)
		case req := <-s.fireCh:
			run, err := s.runBackup(ctx, req.kind, s.now())
			req.res <- fireRes{run: run, err: err}
		}
	}
}

// poll isolates one tick so a panic in a device adapter cannot take the
// worker loop down with it
func (s *Svc) poll(ctx context.Context, name string, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.C(ctx).Error().Interface("panic", r).Str("poll", name).Msg("trigger: poll panicked")
		}
	}()
	if err := fn(ctx); err != nil {
		logger.C(ctx).Error().Err(err).Str("poll", name).Msg("trigger: poll failed")
	}
}
