// Package main provides the shortlist command line tool for screening resumes locally.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shortlist",
	Short: "Rank resumes against a job description with Gemini",
	Long:  "Shortlist extracts text from PDF and DOCX resumes, asks Gemini to score each one against a job description and prints a ranked shortlist.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
