// Package main provides the entry point for the content pipeline HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inkpipe",
	Short: "Content pipeline HTTP API server",
	Long:  "Inkpipe takes a content artifact from idea to publishable draft through research, interview, outline, drafting and revision stages, driven over a REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
