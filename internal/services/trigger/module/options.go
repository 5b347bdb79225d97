package module

import (
	"time"

	"cfgvault/internal/platform/config"
	"cfgvault/internal/services/trigger/domain"
)

// Options for the trigger module
type Options struct {
	DeviceID string
	Params   domain.Params

	ScheduleEvery time.Duration
	RateEvery     time.Duration
}

// FromConfig fills options from environment
// TRIGGER_SERVER is the TFTP server address the backups are sent to
// TRIGGER_VRF (default "mgmt") is the vrf the copy runs in, empty disables the clause
// TRIGGER_FORMAT (default "json") is the export format, "json" or "cli"
// TRIGGER_FILE_PREFIX (default "switch-backup-") prefixes every backup filename
// TRIGGER_DAY (default "Sunday") and TRIGGER_TIME (default "02:30:00") set the weekly slot
// TRIGGER_WEEKLY and TRIGGER_ONCHANGE (default true) gate the two sources
// TRIGGER_SCHEDULE_EVERY (default 1m) and TRIGGER_RATE_EVERY (default 10s) set poll cadences
// TRIGGER_DEVICE_ID (default "default") keys the persisted engine state
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("TRIGGER_")
	return Options{
		DeviceID: c.MayString("DEVICE_ID", "default"),
		Params: domain.Params{
			Server:     c.MayString("SERVER", ""),
			VRF:        c.MayString("VRF", "mgmt"),
			Format:     c.MayString("FORMAT", "json"),
			FilePrefix: c.MayString("FILE_PREFIX", "switch-backup-"),
			Weekday:    c.MayString("DAY", "Sunday"),
			BackupTime: c.MayString("TIME", "02:30:00"),
			WeeklyOn:   c.MayBool("WEEKLY", true),
			ChangeOn:   c.MayBool("ONCHANGE", true),
		},
		ScheduleEvery: c.MayDuration("SCHEDULE_EVERY", time.Minute),
		RateEvery:     c.MayDuration("RATE_EVERY", 10*time.Second),
	}
}
