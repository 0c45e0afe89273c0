package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
)

const divider = "------------------------------------------------------------"

func recommendationLabel(recommended bool) string {
	if recommended {
		return "✅ Recommended for Interview"
	}
	return "⚠️ Review with Caution"
}

// renderReport prints the ranked shortlist the way a recruiter reads it.
func renderReport(w io.Writer, report *models.ScreeningReport) error {
	var b strings.Builder

	fmt.Fprintln(&b, "Analysis Results")
	fmt.Fprintf(&b, "%d resumes, %d analysed, %d recommended\n", report.TotalFiles, report.Analyzed, report.Recommended)

	for _, c := range report.Candidates {
		fmt.Fprintln(&b, divider)
		fmt.Fprintf(&b, "#%d %s (%s)\n", c.Rank, c.CandidateName, c.FileName)
		fmt.Fprintf(&b, "Score: %d/100  %s\n", c.Score, recommendationLabel(c.IsRecommended))
		if c.Summary != "" {
			fmt.Fprintf(&b, "\nSummary: %s\n", c.Summary)
		}
		if c.Reasoning != "" {
			fmt.Fprintf(&b, "\nDetailed Reasoning:\n%s\n", c.Reasoning)
		}
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintln(&b, divider)
		fmt.Fprintln(&b, "Skipped files:")
		for _, s := range report.Skipped {
			fmt.Fprintf(&b, "  - %s: %s\n", s.FileName, s.Reason)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
