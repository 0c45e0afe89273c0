package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Harin-6044/Resume-Shortlister/internal/services"
)

var indexCmd = &cobra.Command{
	Use:   "index --jd <file> <dir>",
	Short: "Screen a directory of resumes and add them to the candidate index",
	Long:  "Screen every PDF/DOCX resume in a directory against a job description, then chunk, embed and store the resumes in Qdrant so they can be found with candidate search.",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

var (
	indexJDFile string
	indexAPIKey string
)

func init() {
	indexCmd.Flags().StringVar(&indexJDFile, "jd", "", "Path to a text file containing the job description (required)")
	indexCmd.Flags().StringVar(&indexAPIKey, "api-key", "", "Gemini API key (overrides GOOGLE_API_KEY env var)")
	_ = indexCmd.MarkFlagRequired("jd")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	jobDescription, err := readJobDescription(indexJDFile)
	if err != nil {
		return err
	}

	paths, err := resumesInDir(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF or DOCX resumes found in %s", args[0])
	}

	resumes, err := loadResumes(paths)
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, err := newPipeline(ctx, indexAPIKey)
	if err != nil {
		return err
	}

	if !p.cfg.Qdrant.Enabled {
		return fmt.Errorf("candidate index is disabled (set QDRANT_ENABLED=true)")
	}
	index, err := services.NewCandidateIndex(p.cfg.Qdrant)
	if err != nil {
		return err
	}
	defer index.Close()

	if err := index.InitCollection(ctx); err != nil {
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

	sessionID := uuid.NewString()
	search := services.NewCandidateSearchService(index, p.gemini, services.NewTextChunker(), p.prompts)
	if err := search.IndexCandidates(ctx, sessionID, report.Candidates); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d candidates from %s under session %s (%d skipped)\n",
		report.Analyzed, args[0], sessionID, len(report.Skipped))
	return nil
}
