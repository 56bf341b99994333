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
	"github.com/inkpipe/inkpipe/internal/pipeline"
	"github.com/inkpipe/inkpipe/internal/research"
	"github.com/inkpipe/inkpipe/internal/sources"
)

var (
	researchArtifactID string
	researchVerbose    bool
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run the research stage for one artifact",
	Long:  `Classify the artifact's topic, query the research sources, and persist the filtered results, printing progress as it goes. The artifact must exist and be eligible for the researching stage.`,
	RunE:  runResearchCmd,
}

func init() {
	researchCmd.Flags().StringVarP(&researchArtifactID, "artifact", "a", "", "Artifact ID (required)")
	researchCmd.Flags().BoolVarP(&researchVerbose, "verbose", "v", false, "Print detailed debug information")
	_ = researchCmd.MarkFlagRequired("artifact")
	rootCmd.AddCommand(researchCmd)
}

func runResearchCmd(_ *cobra.Command, _ []string) error {
	artifactID, err := uuid.Parse(researchArtifactID)
	if err != nil {
		return fmt.Errorf("invalid artifact id %q: %w", researchArtifactID, err)
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

	engine := research.NewEngine(database, sources.SelectProvider(cfg.ResearchProvider, cfg.SourceEndpoints), research.Options{
		RelevanceThreshold: cfg.RelevanceThreshold,
		MinDistinctSources: cfg.MinDistinctSources,
		MaxResults:         cfg.MaxResults,
		SourceFanout:       cfg.SourceFanout,
		PerSourceLimit:     cfg.PerSourceLimit,
		QueryTimeout:       cfg.SourceQueryTimeout,
		Verbose:            researchVerbose,
	})

	result, err := engine.RunWithProgress(ctx, artifactID, func(event pipeline.ProgressEvent) {
		fmt.Printf("[%s] %s\n", event.Stage, event.Message)
	})
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(result)
}
