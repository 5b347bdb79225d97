// Package service implements the backup trigger coordinator
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cfgvault/internal/core/backupcmd"
	"cfgvault/internal/core/edge"
	"cfgvault/internal/core/schedule"
	"cfgvault/internal/modkit/repokit"
	perr "cfgvault/internal/platform/errors"
	"cfgvault/internal/platform/logger"
	"cfgvault/internal/platform/store"
	ptime "cfgvault/internal/platform/time"
	"cfgvault/internal/services/trigger/domain"
	"cfgvault/internal/services/trigger/repo"
)

// Config carries runtime knobs for the coordinator and worker
type Config struct {
	DeviceID string
	Params   domain.Params

	// ScheduleEvery is the weekly predicate poll cadence
	ScheduleEvery time.Duration
	// RateEvery is the change rate sample cadence
	RateEvery time.Duration
}

// Collaborators are the device-facing ports the coordinator drives
type Collaborators struct {
	Checkpoints domain.CheckpointLister
	Exporter    domain.Exporter
	CLI         domain.CLIRenderer
	Shell       domain.AuditRenderer
	Rate        domain.RateSource
	Notifier    domain.Notifier
}

// Svc implements domain.CoordinatorPort
type Svc struct {
	DB     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	audit  domain.AuditSink
	dev    Collaborators
	config Config

	// now is a seam so tests can pin the clock
	now func() time.Time

	mu           sync.Mutex
	det          edge.Detector
	lastSample   float64
	lastSampleAt time.Time

	fireCh chan fireReq
}

type fireReq struct {
	kind backupcmd.TriggerKind
	res  chan fireRes
}

type fireRes struct {
	run domain.BackupRun
	err error
}

// New constructs the coordinator
func New(
	db repokit.TxRunner,
	binder repokit.Binder[repo.Storage],
	audit domain.AuditSink,
	dev Collaborators,
	cfg Config,
) *Svc {
	if db == nil {
		panic("trigger.Svc requires a non nil TxRunner")
	}
	if binder == nil {
		panic("trigger.Svc requires a non nil Storage binder")
	}
	if dev.Exporter == nil || dev.Rate == nil {
		panic("trigger.Svc requires exporter and rate source ports")
	}
	cfg = withDefaults(cfg)

	return &Svc{
		DB:     db,
		binder: binder,
		audit:  audit,
		dev:    dev,
		config: cfg,
		now:    time.Now,
		fireCh: make(chan fireReq),
	}
}

func withDefaults(cfg Config) Config {
	if cfg.ScheduleEvery <= 0 {
		cfg.ScheduleEvery = time.Minute
	}
	if cfg.RateEvery <= 0 {
		cfg.RateEvery = 10 * time.Second
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = "default"
	}
	return cfg
}

// PollSchedule implements domain.CoordinatorPort.
// A parse failure of the weekday or time skips the poll without touching
// the week slot; a fire-time validation failure still consumes it
func (s *Svc) PollSchedule(ctx context.Context) error {
	l := logger.C(ctx).With().Str("mod", "trigger").Logger()

	p := s.config.Params
	spec, err := domain.ScheduleSpec(p.Weekday, p.BackupTime)
	if err != nil {
		l.Warn().Err(err).
			Str("weekday", p.Weekday).
			Str("backup_time", p.BackupTime).
			Msg("trigger: schedule unparseable, skipping poll")
		return nil
	}
	if !p.WeeklyOn {
		return nil
	}

	now := s.now()
	st, err := s.state(ctx)
	if err != nil {
		return err
	}
	if !schedule.ShouldFire(now, spec, st.LastFiredPeriod) {
		return nil
	}

	period := schedule.PeriodOf(now)
	l.Info().Str("period", period).Msg("trigger: weekly backup due")

	// Validation failures and export failures are recorded and notified by
	// runBackup itself; either way the slot is spent, so a misconfigured
	// engine does not retry every poll until the week ends
	_, _ = s.runBackup(ctx, backupcmd.TriggerWeekly, now)

	return s.tx(ctx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).SetLastFiredPeriod(ctx, s.config.DeviceID, period)
	})
}

// PollRate implements domain.CoordinatorPort
func (s *Svc) PollRate(ctx context.Context) error {
	l := logger.C(ctx).With().Str("mod", "trigger").Logger()

	sample, err := s.dev.Rate.SampleRate(ctx)
	if err != nil {
		l.Warn().Err(err).Msg("trigger: rate sample failed")
		return nil
	}

	now := s.now()
	s.mu.Lock()
	s.lastSample = sample
	s.lastSampleAt = now
	if !s.config.Params.ChangeOn {
		s.mu.Unlock()
		return nil
	}
	ev := s.det.Observe(sample)
	s.mu.Unlock()

	switch ev {
	case edge.Started:
		return s.onChangeStarted(ctx, now)
	case edge.Settled:
		return s.onChangeSettled(ctx, now)
	default:
		return nil
	}
}

// Fire implements domain.CoordinatorPort. Manual fires bypass the schedule
// and the weekly dedup but not parameter validation. The request is handed
// to the worker loop so backups never run concurrently
func (s *Svc) Fire(ctx context.Context, kind backupcmd.TriggerKind) (domain.BackupRun, error) {
	if !kind.Valid() {
		return domain.BackupRun{}, perr.Newf(perr.ErrorCodeValidation, "unknown trigger kind %q", kind)
	}

	req := fireReq{kind: kind, res: make(chan fireRes, 1)}
	select {
	case s.fireCh <- req:
	case <-ctx.Done():
		return domain.BackupRun{}, ctx.Err()
	}
	select {
	case r := <-req.res:
		return r.run, r.err
	case <-ctx.Done():
		return domain.BackupRun{}, ctx.Err()
	}
}

// Status implements domain.CoordinatorPort
func (s *Svc) Status(ctx context.Context) (domain.Status, error) {
	st, err := s.state(ctx)
	if err != nil {
		return domain.Status{}, err
	}

	s.mu.Lock()
	changing := s.det.Changing()
	sample := s.lastSample
	sampleAt := s.lastSampleAt
	s.mu.Unlock()

	p := s.config.Params
	return domain.Status{
		DeviceID:        s.config.DeviceID,
		WeeklyEnabled:   p.WeeklyOn,
		ChangeEnabled:   p.ChangeOn,
		Weekday:         p.Weekday,
		BackupTime:      p.BackupTime,
		LastFiredPeriod: st.LastFiredPeriod,
		CurrentPeriod:   schedule.PeriodOf(s.now()),
		Changing:        changing,
		BaseCheckpoint:  st.BaseCheckpoint,
		LastSample:      sample,
		LastSampleAt:    ptime.Ptr(sampleAt),
	}, nil
}

// Runs returns recent backup run history, newest first
func (s *Svc) Runs(ctx context.Context, limit int) ([]domain.BackupRun, error) {
	var out []domain.BackupRun
	err := s.tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.binder.Bind(q).List(ctx, s.config.DeviceID, limit)
		return err
	})
	return out, err
}

// tx runs fn inside a transaction with the device id attached to the context
func (s *Svc) tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	return store.RunInDevice(ctx, s.DB, s.config.DeviceID, func(_ context.Context, q store.RowQuerier) error {
		return fn(q)
	})
}

func (s *Svc) state(ctx context.Context) (domain.State, error) {
	var st domain.State
	err := s.tx(ctx, func(q repokit.Queryer) error {
		var err error
		st, err = s.binder.Bind(q).Get(ctx, s.config.DeviceID)
		return err
	})
	return st, err
}

// onChangeStarted pins the newest checkpoint as the diff baseline
func (s *Svc) onChangeStarted(ctx context.Context, now time.Time) error {
	l := logger.C(ctx).With().Str("mod", "trigger").Logger()
	l.Info().Msg("trigger: configuration change started")

	base := ""
	if s.dev.Checkpoints != nil {
		cps, err := s.dev.Checkpoints.ListCheckpoints(ctx)
		if err != nil {
			l.Warn().Err(err).Msg("trigger: checkpoint list failed, baseline unset")
		} else if len(cps) > 0 {
			base = cps[len(cps)-1].Name
		}
	}

	if base != "" {
		if err := s.tx(ctx, func(q repokit.Queryer) error {
			return s.binder.Bind(q).SetBaseCheckpoint(ctx, s.config.DeviceID, base)
		}); err != nil {
			return err
		}
	}

	s.notify(ctx, domain.SeverityInfo, "configuration change in progress")
	s.auditEvent(ctx, now, "change_started", base, domain.SeverityInfo)
	return nil
}

// onChangeSettled reports what changed and backs the new config up
func (s *Svc) onChangeSettled(ctx context.Context, now time.Time) error {
	l := logger.C(ctx).With().Str("mod", "trigger").Logger()
	l.Info().Msg("trigger: configuration change settled")

	st, err := s.state(ctx)
	if err != nil {
		return err
	}
	base := st.BaseCheckpoint
	if base == "" {
		base = backupcmd.DefaultBaseline
	}

	s.notify(ctx, domain.SeverityInfo, "Configuration change detected - backup initiated")

	if s.dev.CLI != nil {
		if out, err := s.dev.CLI.RunCLI(ctx, backupcmd.DiffCommand(base)); err != nil {
			l.Warn().Err(err).Str("baseline", base).Msg("trigger: checkpoint diff failed")
		} else {
			l.Info().Str("baseline", base).Str("diff", out).Msg("trigger: configuration diff")
		}
		// a pinned checkpoint only covers saved changes; diff the startup
		// config too so unsaved edits are visible
		if base != backupcmd.DefaultBaseline {
			if out, err := s.dev.CLI.RunCLI(ctx, backupcmd.DiffCommand(backupcmd.DefaultBaseline)); err != nil {
				l.Warn().Err(err).Msg("trigger: startup-config diff failed")
			} else {
				l.Info().Str("diff", out).Msg("trigger: unsaved configuration changes")
			}
		}
		if out, err := s.dev.CLI.RunCLI(ctx, "show system"); err != nil {
			l.Warn().Err(err).Msg("trigger: show system failed")
		} else {
			l.Debug().Str("output", out).Msg("trigger: system snapshot")
		}
	}
	if s.dev.Shell != nil {
		if out, err := s.dev.Shell.RunShell(ctx, backupcmd.AuditCommand); err != nil {
			l.Warn().Err(err).Msg("trigger: audit log lookup failed")
		} else {
			l.Info().Str("output", out).Msg("trigger: recent configuration audit entries")
		}
	}

	_, _ = s.runBackup(ctx, backupcmd.TriggerChange, now)

	return s.tx(ctx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).ClearBaseCheckpoint(ctx, s.config.DeviceID)
	})
}

// runBackup validates, renders, and issues one copy command, recording the
// attempt whatever the outcome
func (s *Svc) runBackup(ctx context.Context, kind backupcmd.TriggerKind, now time.Time) (domain.BackupRun, error) {
	l := logger.C(ctx).With().Str("mod", "trigger").Str("kind", string(kind)).Logger()

	p := s.config.Params
	format, coerced := p.Normalize()
	if coerced {
		l.Warn().Str("format", s.config.Params.Format).Msg("trigger: unsupported format, using json")
	}

	run := domain.BackupRun{
		ID:      uuid.NewString(),
		Kind:    kind,
		FiredAt: now,
	}

	if err := p.ValidateFire(); err != nil {
		run.Status = domain.RunInvalid
		run.Error = err.Error()
		s.record(ctx, run)
		s.notify(ctx, domain.SeverityWarning, fmt.Sprintf("backup skipped: %v", err))
		s.auditEvent(ctx, now, "backup_invalid", run.Error, domain.SeverityWarning)
		return run, err
	}

	run.Filename = backupcmd.Filename(p.FilePrefix, kind, now.Unix(), format)
	run.Command = backupcmd.CopyCommand(
		backupcmd.Destination{Address: p.Server, VRF: p.VRF},
		run.Filename, format,
	)

	if err := s.dev.Exporter.Export(ctx, run.Command); err != nil {
		run.Status = domain.RunFailed
		run.Error = err.Error()
		s.record(ctx, run)
		s.notify(ctx, domain.SeverityErr, fmt.Sprintf("backup %s failed: %v", run.Filename, err))
		s.auditEvent(ctx, now, "backup_failed", run.Error, domain.SeverityErr)
		l.Error().Err(err).Str("filename", run.Filename).Msg("trigger: export failed")
		return run, nil
	}

	run.Status = domain.RunOK
	s.record(ctx, run)
	s.notify(ctx, domain.SeverityInfo, fmt.Sprintf("backup %s sent to %s", run.Filename, p.Server))
	s.auditEvent(ctx, now, "backup_ok", run.Filename, domain.SeverityInfo)
	l.Info().Str("filename", run.Filename).Msg("trigger: backup exported")
	return run, nil
}

func (s *Svc) record(ctx context.Context, run domain.BackupRun) {
	if err := s.tx(ctx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).Insert(ctx, s.config.DeviceID, run)
	}); err != nil {
		logger.C(ctx).Warn().Err(err).Str("run_id", run.ID).Msg("trigger: run history write failed")
	}
}

func (s *Svc) notify(ctx context.Context, sev domain.Severity, msg string) {
	if s.dev.Notifier == nil {
		return
	}
	s.dev.Notifier.Notify(ctx, sev, msg)
}

func (s *Svc) auditEvent(ctx context.Context, now time.Time, kind, detail string, sev domain.Severity) {
	if s.audit == nil {
		return
	}
	ev := domain.AuditEvent{
		DeviceID:   s.config.DeviceID,
		Kind:       kind,
		Detail:     detail,
		Severity:   sev,
		OccurredAt: now.UTC(),
	}
	if err := s.audit.Append(ctx, ev); err != nil {
		logger.C(ctx).Debug().Err(err).Str("kind", kind).Msg("trigger: audit append failed")
	}
}
