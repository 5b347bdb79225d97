package domain

import (
	"strings"

	"cfgvault/internal/core/backupcmd"
	perr "cfgvault/internal/platform/errors"
	"cfgvault/internal/platform/net/http/bind"
)

// Params carries the operator-facing knobs the engine runs against.
// Server and FilePrefix are only checked when a source actually fires, so a
// half-configured engine still polls and still consumes its week slot
type Params struct {
	Server     string `json:"server" validate:"omitempty,hostname|ip"`
	VRF        string `json:"vrf,omitempty" validate:"omitempty,max=64"`
	Format     string `json:"format" validate:"omitempty,printascii"`
	FilePrefix string `json:"file_prefix" validate:"omitempty,max=128"`
	Weekday    string `json:"weekday" validate:"required,weekday"`
	BackupTime string `json:"backup_time" validate:"required,timeofday"`
	WeeklyOn   bool   `json:"weekly_on"`
	ChangeOn   bool   `json:"change_on"`
}

// Normalize trims the address and prefix and coerces the configured format
// to a supported one. It returns the coerced value and whether a coercion
// happened
func (p *Params) Normalize() (backupcmd.Format, bool) {
	p.Server = strings.TrimSpace(p.Server)
	p.FilePrefix = strings.TrimSpace(p.FilePrefix)
	f, coerced := backupcmd.NormalizeFormat(p.Format)
	p.Format = string(f)
	return f, coerced
}

// ValidateSchedule checks only the fields the weekly predicate reads.
// Failures here mean the schedule cannot be evaluated at all
func (p Params) ValidateSchedule() error {
	if _, err := ScheduleSpec(p.Weekday, p.BackupTime); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeValidation, "schedule params")
	}
	return nil
}

// ValidateFire checks the fields an export needs. Called at fire time,
// after the schedule predicate has already matched
func (p Params) ValidateFire() error {
	p.Server = strings.TrimSpace(p.Server)
	p.FilePrefix = strings.TrimSpace(p.FilePrefix)
	if p.Server == "" {
		return perr.Newf(perr.ErrorCodeValidation, "tftp server address is empty")
	}
	if p.FilePrefix == "" {
		return perr.Newf(perr.ErrorCodeValidation, "backup file prefix is empty")
	}
	v := bind.Get()
	if err := v.Validator.Struct(p); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeValidation, "backup params")
	}
	return nil
}
