// Package storage persists the one durable record this service keeps:
// which calls exist and how their pipeline is configured. No visual
// content, fingerprint, or event is ever written here.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/visualdelta/internal/config"
	"github.com/your-org/visualdelta/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Call sessions ---

func (s *PostgresStore) CreateCallSession(ctx context.Context, cs *models.CallSession) error {
	cs.ID = uuid.New()
	cs.Status = models.CallSessionActive
	if cs.ConfigOverrides == nil {
		cs.ConfigOverrides = json.RawMessage("{}")
	}
	return s.pool.QueryRow(ctx,
		`INSERT INTO call_sessions (id, status, config_overrides, last_snapshot_ms, snapshot_count)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`,
		cs.ID, cs.Status, cs.ConfigOverrides, cs.LastSnapshotMs, cs.SnapshotCount,
	).Scan(&cs.CreatedAt, &cs.UpdatedAt)
}

func (s *PostgresStore) GetCallSession(ctx context.Context, id uuid.UUID) (*models.CallSession, error) {
	cs := &models.CallSession{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, config_overrides, last_snapshot_ms, snapshot_count, created_at, updated_at
		 FROM call_sessions WHERE id = $1`, id,
	).Scan(&cs.ID, &cs.Status, &cs.ConfigOverrides, &cs.LastSnapshotMs, &cs.SnapshotCount, &cs.CreatedAt, &cs.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get call session: %w", err)
	}
	return cs, nil
}

func (s *PostgresStore) ListCallSessions(ctx context.Context) ([]models.CallSession, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, status, config_overrides, last_snapshot_ms, snapshot_count, created_at, updated_at
		 FROM call_sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list call sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.CallSession
	for rows.Next() {
		var cs models.CallSession
		if err := rows.Scan(&cs.ID, &cs.Status, &cs.ConfigOverrides, &cs.LastSnapshotMs, &cs.SnapshotCount, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan call session: %w", err)
		}
		sessions = append(sessions, cs)
	}
	return sessions, nil
}

// RecordSnapshot bumps a call session's activity counters after a
// snapshot was processed.
func (s *PostgresStore) RecordSnapshot(ctx context.Context, id uuid.UUID, tsObsMs int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE call_sessions SET last_snapshot_ms = $1, snapshot_count = snapshot_count + 1 WHERE id = $2`,
		tsObsMs, id)
	return err
}

func (s *PostgresStore) CloseCallSession(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE call_sessions SET status = $1 WHERE id = $2`, models.CallSessionClosed, id)
	if err != nil {
		return fmt.Errorf("close call session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("call session not found")
	}
	return nil
}

func (s *PostgresStore) DeleteCallSession(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM call_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete call session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("call session not found")
	}
	return nil
}
