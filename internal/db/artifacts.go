package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/inkpipe/inkpipe/internal/pipeline"
)

// CreateArtifact creates a new artifact in draft status and returns it
func (db *DB) CreateArtifact(ctx context.Context, input *ArtifactInput) (*Artifact, error) {
	var a Artifact
	var metadataJSON []byte
	err := db.pool.QueryRow(ctx,
		`INSERT INTO artifacts (owner_id, type, status, title, topic)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, owner_id, type, status, title, topic, content, skeleton,
		           metadata, created_at, updated_at`,
		input.OwnerID, input.Type, pipeline.StatusDraft, input.Title, input.Topic,
	).Scan(&a.ID, &a.OwnerID, &a.Type, &a.Status, &a.Title, &a.Topic, &a.Content,
		&a.Skeleton, &metadataJSON, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact: %w", err)
	}
	if metadataJSON != nil {
		_ = json.Unmarshal(metadataJSON, &a.Metadata)
	}
	return &a, nil
}

// GetArtifact retrieves an artifact by ID. Returns (nil, nil) when absent.
func (db *DB) GetArtifact(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	var a Artifact
	var metadataJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, type, status, title, topic, content, skeleton,
		        metadata, created_at, updated_at
		 FROM artifacts WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.OwnerID, &a.Type, &a.Status, &a.Title, &a.Topic, &a.Content,
		&a.Skeleton, &metadataJSON, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	if metadataJSON != nil {
		_ = json.Unmarshal(metadataJSON, &a.Metadata)
	}
	return &a, nil
}

// ListArtifactsByOwner retrieves all artifacts for an owner, newest first
func (db *DB) ListArtifactsByOwner(ctx context.Context, ownerID uuid.UUID) ([]Artifact, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, owner_id, type, status, title, topic, content, skeleton,
		        metadata, created_at, updated_at
		 FROM artifacts
		 WHERE owner_id = $1
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var a Artifact
		var metadataJSON []byte
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Type, &a.Status, &a.Title, &a.Topic,
			&a.Content, &a.Skeleton, &metadataJSON, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if metadataJSON != nil {
			_ = json.Unmarshal(metadataJSON, &a.Metadata)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// UpdateArtifactStatus sets a new status and refreshes updated_at. The caller
// is responsible for having validated the transition via pipeline.Transition.
func (db *DB) UpdateArtifactStatus(ctx context.Context, id uuid.UUID, status pipeline.Status) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE artifacts SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update artifact status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("artifact %s not found", id)
	}
	return nil
}

// UpdateArtifactContent stores generated content and refreshes updated_at
func (db *DB) UpdateArtifactContent(ctx context.Context, id uuid.UUID, content string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE artifacts SET content = $1, updated_at = NOW() WHERE id = $2`,
		content, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update artifact content: %w", err)
	}
	return nil
}

// UpdateArtifactSkeleton stores the outline text and refreshes updated_at
func (db *DB) UpdateArtifactSkeleton(ctx context.Context, id uuid.UUID, skeleton string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE artifacts SET skeleton = $1, updated_at = NOW() WHERE id = $2`,
		nullIfEmpty(skeleton), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update artifact skeleton: %w", err)
	}
	return nil
}

// MergeArtifactMetadata merges the given keys into the artifact's metadata
// map. Existing keys not present in updates are preserved.
func (db *DB) MergeArtifactMetadata(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	updatesJSON, err := json.Marshal(updates)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata updates: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE artifacts
		 SET metadata = COALESCE(metadata, '{}'::jsonb) || $1::jsonb, updated_at = NOW()
		 WHERE id = $2`,
		updatesJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to merge artifact metadata: %w", err)
	}
	return nil
}

// DeleteArtifact removes an artifact; research results, interview turns and
// events are removed by ON DELETE CASCADE.
func (db *DB) DeleteArtifact(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM artifacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}
