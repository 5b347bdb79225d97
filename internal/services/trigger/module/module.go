// Package module wires up the trigger engine as a modkit.Module
package module

import (
	"cfgvault/internal/modkit"
	"cfgvault/internal/modkit/httpkit"
	modreg "cfgvault/internal/modkit/module"

	trigdom "cfgvault/internal/services/trigger/domain"
	trigrepo "cfgvault/internal/services/trigger/repo"
	trigservice "cfgvault/internal/services/trigger/service"
)

// Ports exported by the trigger module
type Ports struct {
	Coordinator trigdom.CoordinatorPort
	History     trigdom.HistoryPort
}

// Module implements modkit.Module for the trigger engine
type Module struct {
	deps  modkit.Deps
	ports Ports
	svc   *trigservice.Svc
}

// New constructs and wires the trigger module using deps.Cfg
func New(deps modkit.Deps, dev trigservice.Collaborators) *Module {
	opts := FromConfig(deps.Cfg)

	svc := trigservice.New(
		deps.PG,
		trigrepo.NewPG(),
		trigrepo.NewAudit(deps.CH),
		dev,
		trigservice.Config{
			DeviceID:      opts.DeviceID,
			Params:        opts.Params,
			ScheduleEvery: opts.ScheduleEvery,
			RateEvery:     opts.RateEvery,
		},
	)

	m := &Module{deps: deps, svc: svc}
	m.ports = Ports{Coordinator: svc, History: svc}
	return m
}

// Service returns the worker entrypoint for the agent binary
func (m *Module) Service() *trigservice.Svc { return m.svc }

// Name returns the module name
func (m *Module) Name() string { return "trigger" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module config prefix (none)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op: the trigger engine exposes no routes itself,
// the api service fronts it
func (m *Module) MountRoutes(_ httpkit.Router) {}

// Register convenience: allow others to resolve our ports via registry
func Register(deps modkit.Deps, dev trigservice.Collaborators) *Module {
	m := New(deps, dev)
	modreg.Register(m.Name(), m.Ports())
	return m
}
