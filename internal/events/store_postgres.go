package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists the event log in PostgreSQL. The full event is kept
// as JSONB next to the indexed header columns so the log can grow new fields
// without schema churn.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the events table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS asset_events (
			seq      BIGSERIAL PRIMARY KEY,
			id       UUID NOT NULL,
			kind     TEXT NOT NULL,
			asset_id BIGINT NOT NULL,
			at       TIMESTAMPTZ NOT NULL,
			payload  JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS asset_events_asset_idx ON asset_events (asset_id, seq);
	`)
	if err != nil {
		return fmt.Errorf("ensure events schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO asset_events (id, kind, asset_id, at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, event.ID, string(event.Kind), event.AssetID, event.At, payload)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByAsset(ctx context.Context, assetID uint64) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM asset_events WHERE asset_id = $1 ORDER BY seq
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("list events by asset: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM (
			SELECT seq, payload FROM asset_events ORDER BY seq DESC LIMIT $1
		) t ORDER BY seq
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}
