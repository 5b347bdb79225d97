package domain

import (
	"testing"

	"cfgvault/internal/core/backupcmd"
)

func validParams() Params {
	return Params{
		Server:     "10.0.0.5",
		VRF:        "mgmt",
		Format:     "json",
		FilePrefix: "switch-backup-",
		Weekday:    "Sunday",
		BackupTime: "02:30:00",
		WeeklyOn:   true,
		ChangeOn:   true,
	}
}

func TestParamsValidateFire(t *testing.T) {
	p := validParams()
	if err := p.ValidateFire(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	p = validParams()
	p.Server = ""
	if err := p.ValidateFire(); err == nil {
		t.Fatal("empty server must fail fire validation")
	}

	p = validParams()
	p.FilePrefix = ""
	if err := p.ValidateFire(); err == nil {
		t.Fatal("empty prefix must fail fire validation")
	}

	p = validParams()
	p.Server = " \t"
	if err := p.ValidateFire(); err == nil {
		t.Fatal("whitespace-only server must fail fire validation")
	}

	p = validParams()
	p.FilePrefix = "   "
	if err := p.ValidateFire(); err == nil {
		t.Fatal("whitespace-only prefix must fail fire validation")
	}

	p = validParams()
	p.Weekday = "Someday"
	if err := p.ValidateFire(); err == nil {
		t.Fatal("bad weekday must fail fire validation")
	}
}

func TestParamsValidateSchedule(t *testing.T) {
	p := validParams()
	if err := p.ValidateSchedule(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}

	p.BackupTime = "25:00:00"
	if err := p.ValidateSchedule(); err == nil {
		t.Fatal("hour 25 must fail schedule validation")
	}

	// fire-time fields do not gate schedule evaluation
	p = validParams()
	p.Server = ""
	p.FilePrefix = ""
	if err := p.ValidateSchedule(); err != nil {
		t.Fatalf("schedule validation must ignore fire-time fields: %v", err)
	}
}

func TestParamsNormalize(t *testing.T) {
	p := validParams()
	p.Format = "yaml"
	f, coerced := p.Normalize()
	if !coerced || f != backupcmd.FormatJSON {
		t.Fatalf("unsupported format must coerce to json, got %q coerced=%v", f, coerced)
	}
	if p.Format != "json" {
		t.Fatalf("Normalize must rewrite the field, got %q", p.Format)
	}

	p.Format = "cli"
	f, coerced = p.Normalize()
	if coerced || f != backupcmd.FormatCLI {
		t.Fatalf("cli must pass through, got %q coerced=%v", f, coerced)
	}

	// surrounding whitespace never reaches the copy command or filename
	p = validParams()
	p.Server = " 10.0.0.5 "
	p.FilePrefix = " switch-backup- "
	p.Normalize()
	if p.Server != "10.0.0.5" || p.FilePrefix != "switch-backup-" {
		t.Fatalf("Normalize must trim server and prefix, got %q %q", p.Server, p.FilePrefix)
	}
}
