// Package backupcmd assembles backup filenames and device copy commands
package backupcmd

import (
	"fmt"
	"strings"
)

// TriggerKind tags which source requested a backup
type TriggerKind string

const (
	// TriggerWeekly is the recurring weekly schedule source
	TriggerWeekly TriggerKind = "weekly_scheduled"
	// TriggerChange is the configuration-change source
	TriggerChange TriggerKind = "config_change"
)

// Valid reports whether k is one of the recognized kinds
func (k TriggerKind) Valid() bool {
	return k == TriggerWeekly || k == TriggerChange
}

// Format is the configuration export format
type Format string

const (
	// FormatJSON exports the configuration as JSON
	FormatJSON Format = "json"
	// FormatCLI exports the configuration as CLI text
	FormatCLI Format = "cli"
)

// Ext returns the filename extension for the format
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".cfg"
}

// NormalizeFormat lowercases and coerces unknown formats to json.
// Unknown values are not an error here: the agent warns and falls back,
// matching the device-side behavior operators already rely on.
func NormalizeFormat(s string) (f Format, coerced bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, false
	case FormatCLI:
		return FormatCLI, false
	default:
		return FormatJSON, true
	}
}

// Filename builds `<prefix><kind>-<unix_seconds><ext>`. When kind is empty
// (schedule-only deployments) the kind segment and its dash are omitted,
// giving `<prefix><unix_seconds><ext>`.
func Filename(prefix string, kind TriggerKind, unixSeconds int64, format Format) string {
	if kind == "" {
		return fmt.Sprintf("%s%d%s", prefix, unixSeconds, format.Ext())
	}
	return fmt.Sprintf("%s%s-%d%s", prefix, kind, unixSeconds, format.Ext())
}

// Destination is where the exported configuration is sent
type Destination struct {
	Address string
	VRF     string
}

// CopyCommand assembles the device copy command:
// `copy running-config tftp://<address>/<filename> <format>[ vrf <vrf>]`.
// The vrf clause is omitted when the destination vrf is empty.
func CopyCommand(dst Destination, filename string, format Format) string {
	cmd := fmt.Sprintf("copy running-config tftp://%s/%s %s", dst.Address, filename, format)
	if dst.VRF != "" {
		cmd += " vrf " + dst.VRF
	}
	return cmd
}

// DiffCommand renders the checkpoint diff command against running-config
func DiffCommand(baseline string) string {
	return fmt.Sprintf("checkpoint diff %s running-config", baseline)
}

// DefaultBaseline is the diff baseline used when no checkpoint was captured
const DefaultBaseline = "startup-config"

// AuditCommand is the shell command that surfaces recent configuration audit logs
const AuditCommand = "ausearch -i -m USYS_CONFIG -ts recent"
