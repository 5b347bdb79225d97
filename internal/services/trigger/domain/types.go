// Package domain defines the backup trigger engine types and ports
package domain

import (
	"time"

	"cfgvault/internal/core/backupcmd"
	"cfgvault/internal/core/schedule"
)

// Severity mirrors the device syslog severities the notifier understands
type Severity string

const (
	// SeverityInfo is routine operational visibility
	SeverityInfo Severity = "INFO"
	// SeverityWarning flags misconfiguration that skipped a backup
	SeverityWarning Severity = "WARNING"
	// SeverityErr flags an export that was attempted and failed
	SeverityErr Severity = "ERR"
)

// RunStatus is the outcome of one fire attempt
type RunStatus string

const (
	// RunOK means the export command was issued successfully
	RunOK RunStatus = "ok"
	// RunInvalid means validation rejected the fire before any export
	RunInvalid RunStatus = "invalid_params"
	// RunFailed means the export was attempted and the device reported an error
	RunFailed RunStatus = "export_failed"
)

// BackupRun records one fire attempt, successful or not
type BackupRun struct {
	ID       string                `json:"id"`
	Kind     backupcmd.TriggerKind `json:"kind"`
	Filename string                `json:"filename"`
	Command  string                `json:"command"`
	Status   RunStatus             `json:"status"`
	Error    string                `json:"error,omitempty"`
	FiredAt  time.Time             `json:"fired_at"`
}

// Checkpoint is one entry from the device checkpoint list.
// The list is ordered oldest first; the last entry is the newest.
type Checkpoint struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// State is the durable engine state for one device
type State struct {
	DeviceID        string
	LastFiredPeriod string
	BaseCheckpoint  string
	UpdatedAt       time.Time
}

// Status is an immutable snapshot served to operators
type Status struct {
	DeviceID        string     `json:"device_id"`
	WeeklyEnabled   bool       `json:"weekly_enabled"`
	ChangeEnabled   bool       `json:"change_enabled"`
	Weekday         string     `json:"weekday"`
	BackupTime      string     `json:"backup_time"`
	LastFiredPeriod string     `json:"last_fired_period,omitempty"`
	CurrentPeriod   string     `json:"current_period"`
	Changing        bool       `json:"changing"`
	BaseCheckpoint  string     `json:"base_checkpoint,omitempty"`
	LastSample      float64    `json:"last_sample"`
	LastSampleAt    *time.Time `json:"last_sample_at,omitempty"`
}

// AuditEvent is one append-only row for the audit sink
type AuditEvent struct {
	DeviceID   string    `json:"device_id"`
	Kind       string    `json:"kind"`
	Detail     string    `json:"detail"`
	Severity   Severity  `json:"severity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ScheduleSpec resolves the configured weekday and time strings into a
// schedule.Spec. Errors here mean the weekly source is never-due for the
// current poll, not that the engine is broken.
func ScheduleSpec(weekday, backupTime string) (schedule.Spec, error) {
	day, err := schedule.ParseWeekday(weekday)
	if err != nil {
		return schedule.Spec{}, err
	}
	at, err := schedule.ParseTimeOfDay(backupTime)
	if err != nil {
		return schedule.Spec{}, err
	}
	return schedule.Spec{Weekday: day, At: at}, nil
}
