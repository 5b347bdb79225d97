// Package repo provides the trigger engine repository implementation
package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cfgvault/internal/core/backupcmd"
	"cfgvault/internal/modkit/repokit"
	"cfgvault/internal/services/trigger/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the durable surface the coordinator needs
type Storage interface {
	domain.StateRepo
	domain.RunsRepo
}

// Get implements domain.StateRepo
func (s *pg) Get(ctx context.Context, deviceID string) (domain.State, error) {
	const sqlq = `
		SELECT last_fired_period, base_checkpoint, updated_at
		FROM backup_state
		WHERE device_id = $1
	`
	st := domain.State{DeviceID: deviceID}
	row := s.q.QueryRow(ctx, sqlq, deviceID)
	var period, base sql.NullString
	var updated sql.NullTime
	if err := row.Scan(&period, &base, &updated); err != nil {
		// pgx surfaces its own no-rows error through the sql adapter, and it
		// only unwraps to sql.ErrNoRows via errors.Is
		if errors.Is(err, sql.ErrNoRows) {
			return st, nil
		}
		return st, err
	}
	st.LastFiredPeriod = period.String
	st.BaseCheckpoint = base.String
	if updated.Valid {
		st.UpdatedAt = updated.Time
	}
	return st, nil
}

// SetLastFiredPeriod implements domain.StateRepo
func (s *pg) SetLastFiredPeriod(ctx context.Context, deviceID, period string) error {
	const sqlq = `
		INSERT INTO backup_state (device_id, last_fired_period, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (device_id) DO UPDATE
		SET last_fired_period = EXCLUDED.last_fired_period, updated_at = now()
	`
	_, err := s.q.Exec(ctx, sqlq, deviceID, period)
	return err
}

// SetBaseCheckpoint implements domain.StateRepo
func (s *pg) SetBaseCheckpoint(ctx context.Context, deviceID, name string) error {
	const sqlq = `
		INSERT INTO backup_state (device_id, base_checkpoint, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (device_id) DO UPDATE
		SET base_checkpoint = EXCLUDED.base_checkpoint, updated_at = now()
	`
	_, err := s.q.Exec(ctx, sqlq, deviceID, name)
	return err
}

// ClearBaseCheckpoint implements domain.StateRepo
func (s *pg) ClearBaseCheckpoint(ctx context.Context, deviceID string) error {
	const sqlq = `
		UPDATE backup_state
		SET base_checkpoint = '', updated_at = now()
		WHERE device_id = $1
	`
	_, err := s.q.Exec(ctx, sqlq, deviceID)
	return err
}

// Insert implements domain.RunsRepo
func (s *pg) Insert(ctx context.Context, deviceID string, run domain.BackupRun) error {
	const sqlq = `
		INSERT INTO backup_runs
			(id, device_id, kind, filename, command, status, error, fired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.q.Exec(ctx, sqlq,
		run.ID, deviceID, string(run.Kind), run.Filename,
		run.Command, string(run.Status), run.Error, run.FiredAt.UTC(),
	)
	return err
}

// List implements domain.RunsRepo, newest first
func (s *pg) List(ctx context.Context, deviceID string, limit int) ([]domain.BackupRun, error) {
	if limit <= 0 {
		limit = 50
	}
	const sqlq = `
		SELECT id, kind, filename, command, status, error, fired_at
		FROM backup_runs
		WHERE device_id = $1
		ORDER BY fired_at DESC, id DESC
		LIMIT $2
	`
	rows, err := s.q.Query(ctx, sqlq, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BackupRun
	for rows.Next() {
		var r domain.BackupRun
		var kind, status string
		var errMsg sql.NullString
		var firedAt time.Time
		if err := rows.Scan(&r.ID, &kind, &r.Filename, &r.Command, &status, &errMsg, &firedAt); err != nil {
			return nil, err
		}
		r.Kind = backupcmd.TriggerKind(kind)
		r.Status = domain.RunStatus(status)
		r.Error = errMsg.String
		r.FiredAt = firedAt
		out = append(out, r)
	}
	return out, rows.Err()
}
