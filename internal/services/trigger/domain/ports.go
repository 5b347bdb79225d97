package domain

import (
	"context"

	"cfgvault/internal/core/backupcmd"
)

// CoordinatorPort is the public entrypoint exposed by the module.
// The worker loop drives PollSchedule/PollRate on its tickers, and the
// HTTP layer calls Fire for operator-requested backups
type CoordinatorPort interface {
	// PollSchedule evaluates the weekly source once against now
	PollSchedule(ctx context.Context) error

	// PollRate takes one configuration-change rate sample and reacts
	// to Started/Settled edges
	PollRate(ctx context.Context) error

	// Fire runs one backup immediately for the given trigger kind,
	// bypassing schedule and dedup but not validation
	Fire(ctx context.Context, kind backupcmd.TriggerKind) (BackupRun, error)

	// Status snapshots the engine for operators
	Status(ctx context.Context) (Status, error)
}

// HistoryPort exposes the recorded backup runs to operators
type HistoryPort interface {
	Runs(ctx context.Context, limit int) ([]BackupRun, error)
}

// StateRepo persists the per-device engine state
type StateRepo interface {
	// Get returns the stored state, or a zero-valued state when the
	// device has never fired
	Get(ctx context.Context, deviceID string) (State, error)

	// SetLastFiredPeriod records the week slot that just fired
	SetLastFiredPeriod(ctx context.Context, deviceID, period string) error

	// SetBaseCheckpoint records the checkpoint captured when a change
	// burst started
	SetBaseCheckpoint(ctx context.Context, deviceID, name string) error

	// ClearBaseCheckpoint resets the baseline after a settle
	ClearBaseCheckpoint(ctx context.Context, deviceID string) error
}

// RunsRepo persists the backup run history
type RunsRepo interface {
	Insert(ctx context.Context, deviceID string, run BackupRun) error
	List(ctx context.Context, deviceID string, limit int) ([]BackupRun, error)
}

// AuditSink appends trigger events to the analytical store.
// Implementations must tolerate a nil/absent backing store
type AuditSink interface {
	Append(ctx context.Context, ev AuditEvent) error
}

// CheckpointLister exposes the device checkpoint inventory
type CheckpointLister interface {
	// ListCheckpoints returns checkpoints ordered oldest first
	ListCheckpoints(ctx context.Context) ([]Checkpoint, error)
}

// Exporter issues the copy command on the device
type Exporter interface {
	// Export runs the given CLI command and returns the device error, if any
	Export(ctx context.Context, command string) error
}

// CLIRenderer runs read-only show/diff commands and returns their output
type CLIRenderer interface {
	RunCLI(ctx context.Context, command string) (string, error)
}

// AuditRenderer runs a shell command on the device and returns its output
type AuditRenderer interface {
	RunShell(ctx context.Context, command string) (string, error)
}

// Notifier raises operator-visible alerts at syslog-like severities
type Notifier interface {
	Notify(ctx context.Context, sev Severity, msg string)
}

// RateSource samples the configuration-change rate signal
type RateSource interface {
	// SampleRate returns the current change rate; zero means quiescent
	SampleRate(ctx context.Context) (float64, error)
}
