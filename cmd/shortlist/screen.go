package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Harin-6044/Resume-Shortlister/internal/services"
)

var screenCmd = &cobra.Command{
	Use:   "screen --jd <file> <resume>...",
	Short: "Score resumes against a job description",
	Long:  "Score one or more PDF/DOCX resumes against a job description file and print the candidates ranked by fit score.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScreen,
}

var (
	screenJDFile string
	screenJSON   bool
	screenAPIKey string
)

func init() {
	screenCmd.Flags().StringVar(&screenJDFile, "jd", "", "Path to a text file containing the job description (required)")
	screenCmd.Flags().BoolVar(&screenJSON, "json", false, "Print the report as JSON")
	screenCmd.Flags().StringVar(&screenAPIKey, "api-key", "", "Gemini API key (overrides GOOGLE_API_KEY env var)")
	_ = screenCmd.MarkFlagRequired("jd")

	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, args []string) error {
	jobDescription, err := readJobDescription(screenJDFile)
	if err != nil {
		return err
	}

	resumes, err := loadResumes(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, err := newPipeline(ctx, screenAPIKey)
	if err != nil {
		return err
	}

	report, err := p.screener.Screen(ctx, services.ScreenRequest{
		JobDescription: jobDescription,
		Resumes:        resumes,
	}, func(done, total int, fileName string) {
		fmt.Fprintf(os.Stderr, "Analyzing resumes... %d/%d (%s)\n", done, total, fileName)
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if screenJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	return renderReport(out, report)
}
