package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveResearchResults replaces an artifact's research results inside a
// transaction: prior rows are deleted, then the new batch is inserted, so a
// re-run never stacks duplicates and a failed insert leaves the old batch
// intact. Results are inserted in the order given; callers pass them sorted
// by relevance.
func (db *DB) SaveResearchResults(ctx context.Context, results []ResearchResultInput) ([]ResearchResult, error) {
	if len(results) == 0 {
		return nil, nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM research_results WHERE artifact_id = $1`, results[0].ArtifactID); err != nil {
		return nil, fmt.Errorf("failed to clear prior research results: %w", err)
	}

	var saved []ResearchResult
	for _, input := range results {
		var r ResearchResult
		err := tx.QueryRow(ctx,
			`INSERT INTO research_results (artifact_id, source_type, source_name,
			                               source_url, excerpt, relevance_score)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, artifact_id, source_type, source_name, source_url,
			           excerpt, relevance_score, created_at`,
			input.ArtifactID, input.SourceType, input.SourceName,
			nullIfEmpty(input.SourceURL), input.Excerpt, input.RelevanceScore,
		).Scan(&r.ID, &r.ArtifactID, &r.SourceType, &r.SourceName, &r.SourceURL,
			&r.Excerpt, &r.RelevanceScore, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to save research result: %w", err)
		}
		saved = append(saved, r)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit research results: %w", err)
	}
	return saved, nil
}

// GetResearchResults retrieves all results for an artifact, highest relevance first
func (db *DB) GetResearchResults(ctx context.Context, artifactID uuid.UUID) ([]ResearchResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, artifact_id, source_type, source_name, source_url,
		        excerpt, relevance_score, created_at
		 FROM research_results
		 WHERE artifact_id = $1
		 ORDER BY relevance_score DESC`,
		artifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get research results: %w", err)
	}
	defer rows.Close()

	var results []ResearchResult
	for rows.Next() {
		var r ResearchResult
		if err := rows.Scan(&r.ID, &r.ArtifactID, &r.SourceType, &r.SourceName,
			&r.SourceURL, &r.Excerpt, &r.RelevanceScore, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteResearchResults removes all results for an artifact (manual curation)
func (db *DB) DeleteResearchResults(ctx context.Context, artifactID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM research_results WHERE artifact_id = $1`, artifactID)
	if err != nil {
		return fmt.Errorf("failed to delete research results: %w", err)
	}
	return nil
}
