package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Harin-6044/Resume-Shortlister/internal/config"
	"github.com/Harin-6044/Resume-Shortlister/internal/services"
)

// pipeline holds the services a command needs, built from the environment.
type pipeline struct {
	cfg      *config.Config
	gemini   services.GeminiService
	prompts  *services.PromptBuilder
	screener services.Screener
}

func newPipeline(ctx context.Context, apiKey string) (*pipeline, error) {
	cfg := config.Load()
	if apiKey != "" {
		cfg.Gemini.APIKey = apiKey
	}
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set GOOGLE_API_KEY environment variable or use --api-key flag)")
	}

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini, cfg.Worker)
	if err != nil {
		return nil, err
	}

	prompts := services.NewPromptBuilder(cfg.Screening.RecommendThreshold, cfg.Screening.MaxResumeChars)
	analyzer := services.NewCandidateAnalyzer(gemini, prompts, cfg.Screening.RecommendThreshold)

	return &pipeline{
		cfg:     cfg,
		gemini:  gemini,
		prompts: prompts,
		// The CLI is not bound by the HTTP upload limit.
		screener: services.NewScreener(services.NewResumeExtractor(), analyzer, 0, cfg.Screening.AnalysisConcurrency),
	}, nil
}

func readJobDescription(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("--jd is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	jd := strings.TrimSpace(string(data))
	if jd == "" {
		return "", fmt.Errorf("job description file %s is empty", path)
	}
	return jd, nil
}

func loadResumes(paths []string) ([]services.ResumeFile, error) {
	resumes := make([]services.ResumeFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		resumes = append(resumes, services.ResumeFile{
			FileName: filepath.Base(path),
			Data:     data,
		})
	}
	return resumes, nil
}

// resumesInDir lists the PDF and DOCX files directly inside dir, sorted by name.
func resumesInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !services.IsSupportedResume(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
