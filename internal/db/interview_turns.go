package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UpsertInterviewTurn inserts or overwrites one turn keyed by
// (artifact_id, question_number). Repeated saves with the same question
// number replace the previous answer and snapshot; no duplicate rows.
func (db *DB) UpsertInterviewTurn(ctx context.Context, input *InterviewTurnInput) (*InterviewTurn, error) {
	scoresJSON, err := json.Marshal(input.CoverageScores)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal coverage scores: %w", err)
	}

	var t InterviewTurn
	var savedScores []byte
	err = db.pool.QueryRow(ctx,
		`INSERT INTO interview_turns (artifact_id, question_number, dimension,
		                              question, answer, coverage_scores)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (artifact_id, question_number)
		 DO UPDATE SET dimension = $3, question = $4, answer = $5,
		               coverage_scores = $6, updated_at = NOW()
		 RETURNING id, artifact_id, question_number, dimension, question, answer,
		           coverage_scores, created_at, updated_at`,
		input.ArtifactID, input.QuestionNumber, input.Dimension,
		input.Question, input.Answer, scoresJSON,
	).Scan(&t.ID, &t.ArtifactID, &t.QuestionNumber, &t.Dimension, &t.Question,
		&t.Answer, &savedScores, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert interview turn: %w", err)
	}
	if savedScores != nil {
		_ = json.Unmarshal(savedScores, &t.CoverageScores)
	}
	return &t, nil
}

// GetInterviewTurns retrieves all turns for an artifact in question order
func (db *DB) GetInterviewTurns(ctx context.Context, artifactID uuid.UUID) ([]InterviewTurn, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, artifact_id, question_number, dimension, question, answer,
		        coverage_scores, created_at, updated_at
		 FROM interview_turns
		 WHERE artifact_id = $1
		 ORDER BY question_number`,
		artifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get interview turns: %w", err)
	}
	defer rows.Close()

	var turns []InterviewTurn
	for rows.Next() {
		var t InterviewTurn
		var scoresJSON []byte
		if err := rows.Scan(&t.ID, &t.ArtifactID, &t.QuestionNumber, &t.Dimension,
			&t.Question, &t.Answer, &scoresJSON, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if scoresJSON != nil {
			_ = json.Unmarshal(scoresJSON, &t.CoverageScores)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
