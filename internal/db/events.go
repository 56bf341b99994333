package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AppendArtifactEvent records one human-readable audit entry for an artifact.
// Events are append-only; callers use them to trace stage transitions.
func (db *DB) AppendArtifactEvent(ctx context.Context, artifactID uuid.UUID, event, detail string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO artifact_events (artifact_id, event, detail)
		 VALUES ($1, $2, $3)`,
		artifactID, event, nullIfEmpty(detail),
	)
	if err != nil {
		return fmt.Errorf("failed to append artifact event: %w", err)
	}
	return nil
}

// GetArtifactEvents retrieves the audit trail for an artifact, oldest first
func (db *DB) GetArtifactEvents(ctx context.Context, artifactID uuid.UUID) ([]ArtifactEvent, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, artifact_id, event, COALESCE(detail, ''), created_at
		 FROM artifact_events
		 WHERE artifact_id = $1
		 ORDER BY created_at`,
		artifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact events: %w", err)
	}
	defer rows.Close()

	var events []ArtifactEvent
	for rows.Next() {
		var e ArtifactEvent
		if err := rows.Scan(&e.ID, &e.ArtifactID, &e.Event, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
