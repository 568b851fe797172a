// Package main provides the entry point for the CareerMate HTTP API server
// and its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "careermate",
	Short: "CareerMate HTTP API Server",
	Long: "CareerMate generates career guidance, mock interviews, job suggestions, career discovery " +
		"results and career stories with an LLM, and keeps them on a per-user dashboard.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
