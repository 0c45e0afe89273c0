package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
)

const (
	unknownCandidate = "Unknown"
	failedCandidate  = "Unknown/Error"
)

// CandidateAnalyzer scores a single resume against a job description.
type CandidateAnalyzer interface {
	Analyze(ctx context.Context, jobDescription, resumeText string) *models.CandidateAnalysis
}

type candidateAnalyzer struct {
	geminiService      GeminiService
	promptBuilder      *PromptBuilder
	recommendThreshold int
}

func NewCandidateAnalyzer(geminiService GeminiService, promptBuilder *PromptBuilder, recommendThreshold int) CandidateAnalyzer {
	return &candidateAnalyzer{
		geminiService:      geminiService,
		promptBuilder:      promptBuilder,
		recommendThreshold: recommendThreshold,
	}
}

// rawAnalysis mirrors the model output; reasoning may come back as a string or as an object.
type rawAnalysis struct {
	CandidateName string          `json:"candidate_name"`
	Score         json.Number     `json:"score"`
	Summary       string          `json:"summary"`
	Reasoning     json.RawMessage `json:"reasoning"`
	IsRecommended bool            `json:"is_recommended"`
}

// Analyze never returns nil. Failures come back as a zero-score analysis with Error set.
func (a *candidateAnalyzer) Analyze(ctx context.Context, jobDescription, resumeText string) *models.CandidateAnalysis {
	prompt := a.promptBuilder.BuildCandidateAnalysisPrompt(jobDescription, resumeText)
	log.Printf("📝 Candidate analysis prompt length: %d characters", len(prompt))

	response, err := a.geminiService.GenerateJSONWithRetry(ctx, prompt, CandidateAnalysisSchema())
	if err != nil {
		log.Printf("❌ Candidate analysis failed: %v", err)
		return &models.CandidateAnalysis{
			CandidateName: failedCandidate,
			Score:         0,
			Summary:       "Analysis failed!",
			Reasoning:     fmt.Sprintf("An unexpected error occurred: %v", err),
			IsRecommended: false,
			Error:         err.Error(),
		}
	}

	analysis, err := a.parseAnalysis(response)
	if err != nil {
		log.Printf("❌ Failed to parse candidate analysis response: %v", err)
		return &models.CandidateAnalysis{
			CandidateName: failedCandidate,
			Score:         0,
			Summary:       "Analysis failed due to response format error!",
			Reasoning:     fmt.Sprintf("Failed to parse model output, raw response: %s", response),
			IsRecommended: false,
			Error:         err.Error(),
		}
	}

	return analysis
}

func (a *candidateAnalyzer) parseAnalysis(response string) (*models.CandidateAnalysis, error) {
	jsonStr := extractJSON(response)

	decoder := json.NewDecoder(strings.NewReader(jsonStr))
	decoder.UseNumber()

	var raw rawAnalysis
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	if raw.Score == "" {
		return nil, fmt.Errorf("response is missing score")
	}
	scoreFloat, err := raw.Score.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid score %q: %w", raw.Score, err)
	}

	reasoning, err := normalizeReasoning(raw.Reasoning)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(raw.CandidateName)
	if name == "" {
		name = unknownCandidate
	}

	score := clampScore(int(scoreFloat + 0.5))

	return &models.CandidateAnalysis{
		CandidateName: name,
		Score:         score,
		Summary:       strings.TrimSpace(raw.Summary),
		Reasoning:     reasoning,
		IsRecommended: score >= a.recommendThreshold,
	}, nil
}

// normalizeReasoning accepts either the requested markdown string or a
// {"Strengths": ..., "Gaps": ...} object and always returns markdown.
func normalizeReasoning(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text), nil
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return "", fmt.Errorf("reasoning must be a string or an object: %w", err)
	}

	strengths := sectionText(sections, "Strengths")
	gaps := sectionText(sections, "Gaps")

	return fmt.Sprintf("**Strengths:**\n%s\n\n**Gaps:**\n%s", strengths, gaps), nil
}

func sectionText(sections map[string]json.RawMessage, key string) string {
	var value json.RawMessage
	for k, v := range sections {
		if strings.EqualFold(k, key) {
			value = v
			break
		}
	}
	if len(value) == 0 {
		return "N/A"
	}

	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		return text
	}

	var items []string
	if err := json.Unmarshal(value, &items); err == nil {
		bullets := make([]string, 0, len(items))
		for _, item := range items {
			bullets = append(bullets, "- "+strings.TrimSpace(item))
		}
		return strings.Join(bullets, "\n")
	}

	return string(value)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return strings.TrimSpace(text)
}
