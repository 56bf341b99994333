package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/inkpipe/inkpipe/internal/config"
	"github.com/inkpipe/inkpipe/internal/db"
	"github.com/inkpipe/inkpipe/internal/interview"
)

var interviewArtifactID string

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Start or inspect an interview session for one artifact",
	Long:  `Open the interview session for a case-study artifact and print its state: the saved turns, the latest coverage snapshot, and whether this is a fresh session or a resume.`,
	RunE:  runInterviewCmd,
}

func init() {
	interviewCmd.Flags().StringVarP(&interviewArtifactID, "artifact", "a", "", "Artifact ID (required)")
	_ = interviewCmd.MarkFlagRequired("artifact")
	rootCmd.AddCommand(interviewCmd)
}

func runInterviewCmd(_ *cobra.Command, _ []string) error {
	artifactID, err := uuid.Parse(interviewArtifactID)
	if err != nil {
		return fmt.Errorf("invalid artifact id %q: %w", interviewArtifactID, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	// The CLI never scores or synthesizes, so no LLM client is attached.
	engine := interview.NewEngine(database, nil, cfg.CompletionThreshold)
	result, err := engine.Start(ctx, artifactID)
	if err != nil {
		return err
	}

	if result.IsResume {
		fmt.Printf("Resuming interview: %d turns saved, coverage %d/100\n", len(result.Turns), result.Coverage.Total())
	} else {
		fmt.Println("Interview started")
	}
	return json.NewEncoder(os.Stdout).Encode(result)
}
