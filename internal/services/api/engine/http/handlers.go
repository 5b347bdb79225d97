// Package http provides http transport for the trigger engine
package http

import (
	stdhttp "net/http"
	"strconv"

	"cfgvault/internal/core/backupcmd"
	"cfgvault/internal/modkit/httpkit"
	trigdom "cfgvault/internal/services/trigger/domain"
)

// Ports are the engine ports the handlers front
type Ports struct {
	Coordinator trigdom.CoordinatorPort
	History     trigdom.HistoryPort
}

// FireInput is the manual fire request
type FireInput struct {
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=weekly_scheduled config_change" example:"config_change"`
}

// Register mounts the engine endpoints on the given router
func Register(r httpkit.Router, p Ports) {
	h := &handlers{ports: p}
	httpkit.Get(r, "/status", h.status)
	httpkit.Get(r, "/runs", h.runs)
	httpkit.PostJSON[FireInput](r, "/backup", h.fire)
}

type handlers struct{ ports Ports }

// swagger:route GET /status Engine engineStatus
// @Summary Engine state snapshot
// @Tags Engine
// @Produce json
// @Success 200 type trigdom.Status ok
// @Router /status [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	return h.ports.Coordinator.Status(r.Context())
}

// swagger:route GET /runs Engine engineRuns
// @Summary Backup run history, newest first
// @Tags Engine
// @Produce json
// @Param limit query int false "max rows, default 50"
// @Success 200 {array} trigdom.BackupRun ok
// @Router /runs [get]
func (h *handlers) runs(r *stdhttp.Request) (any, error) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	return h.ports.History.Runs(r.Context(), limit)
}

// swagger:route POST /backup Engine engineFire
// @Summary Fire a backup now
// @Tags Engine
// @Accept json
// @Produce json
// @Param payload body FireInput false "Trigger kind"
// @Success 200 type trigdom.BackupRun ok
// @Router /backup [post]
func (h *handlers) fire(r *stdhttp.Request, in FireInput) (any, error) {
	kind := backupcmd.TriggerKind(in.Kind)
	if kind == "" {
		kind = backupcmd.TriggerChange
	}
	return h.ports.Coordinator.Fire(r.Context(), kind)
}
