package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLArchive stores events in the telemetry_events table (MySQL).
type SQLArchive struct {
	DB *sql.DB
}

const schema = `CREATE TABLE IF NOT EXISTS telemetry_events (
	id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	kind          VARCHAR(16)  NOT NULL,
	resource      VARCHAR(64)  NOT NULL,
	method        VARCHAR(8)   NOT NULL,
	status        SMALLINT     NOT NULL DEFAULT 0,
	message       TEXT         NOT NULL,
	restaurant_id VARCHAR(64)  NULL,
	occurred_at   DATETIME(3)  NOT NULL,
	KEY idx_telemetry_resource (resource, occurred_at)
)`

// EnsureSchema creates the table when missing.
func (a *SQLArchive) EnsureSchema(ctx context.Context) error {
	if _, err := a.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create telemetry_events: %w", err)
	}
	return nil
}

func (a *SQLArchive) Store(ctx context.Context, ev Event) error {
	var rid sql.NullString
	if ev.RestaurantID != "" {
		rid = sql.NullString{String: ev.RestaurantID, Valid: true}
	}
	at := ev.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := a.DB.ExecContext(ctx,
		`INSERT INTO telemetry_events (kind, resource, method, status, message, restaurant_id, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Kind, ev.Resource, ev.Method, ev.Status, ev.Message, rid, at.UTC(),
	)
	return err
}
