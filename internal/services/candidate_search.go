package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
)

const (
	defaultSearchLimit = 10
	// Several chunks of one resume can match, so fetch extra before collapsing.
	searchOverfetch = 4
	excerptLength   = 300
)

var ErrSearchDisabled = errors.New("candidate search is disabled (set QDRANT_ENABLED=true)")

// CandidateSearchService indexes analysed resumes and answers free-text candidate searches.
type CandidateSearchService interface {
	IndexCandidates(ctx context.Context, sessionID string, candidates []models.RankedCandidate) error
	Search(ctx context.Context, query string, limit int) ([]models.CandidateSearchHit, error)
}

type candidateSearchService struct {
	index         CandidateIndex
	geminiService GeminiService
	chunker       TextChunker
	promptBuilder *PromptBuilder
}

func NewCandidateSearchService(index CandidateIndex, geminiService GeminiService, chunker TextChunker, promptBuilder *PromptBuilder) CandidateSearchService {
	return &candidateSearchService{
		index:         index,
		geminiService: geminiService,
		chunker:       chunker,
		promptBuilder: promptBuilder,
	}
}

// IndexCandidates implements CandidateSearchService. Points from an earlier run of the
// same session are replaced. Failed analyses and candidates without resume text are not indexed.
func (s *candidateSearchService) IndexCandidates(ctx context.Context, sessionID string, candidates []models.RankedCandidate) error {
	if !s.index.Enabled() {
		return nil
	}

	if err := s.index.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear previous index for session %s: %w", sessionID, err)
	}

	indexed := 0
	for _, candidate := range candidates {
		if candidate.Failed() || strings.TrimSpace(candidate.ResumeText) == "" {
			continue
		}

		chunks := s.chunker.ChunkText(candidate.ResumeText, defaultChunkSize, defaultChunkOverlap)

		embeddings := make([][]float32, 0, len(chunks))
		for i, chunk := range chunks {
			embedding, err := s.geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %d of %s: %w", i, candidate.FileName, err)
			}
			embeddings = append(embeddings, embedding)
		}

		documentID := candidate.DocumentID
		if documentID == "" {
			documentID = sessionID + "/" + candidate.FileName
		}

		doc := CandidateDocument{
			SessionID:     sessionID,
			DocumentID:    documentID,
			CandidateName: candidate.CandidateName,
			FileName:      candidate.FileName,
			FitScore:      candidate.Score,
		}
		if err := s.index.IndexCandidate(ctx, doc, chunks, embeddings); err != nil {
			return fmt.Errorf("failed to index %s: %w", candidate.FileName, err)
		}
		indexed++
	}

	log.Printf("📚 Indexed %d candidates for session %s\n", indexed, sessionID)
	return nil
}

// Search implements CandidateSearchService.
func (s *candidateSearchService) Search(ctx context.Context, query string, limit int) ([]models.CandidateSearchHit, error) {
	if !s.index.Enabled() {
		return nil, ErrSearchDisabled
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	embedding, err := s.geminiService.GenerateEmbedding(ctx, s.promptBuilder.BuildSearchQuery(query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed search query: %w", err)
	}

	hits, err := s.index.Search(ctx, embedding, limit*searchOverfetch)
	if err != nil {
		return nil, err
	}

	return collapseHits(hits, limit), nil
}

// collapseHits keeps the best-scoring chunk per resume, preserving the index's ranking.
func collapseHits(hits []IndexHit, limit int) []models.CandidateSearchHit {
	seen := make(map[string]bool)
	results := make([]models.CandidateSearchHit, 0, limit)

	for _, hit := range hits {
		key := hit.SessionID + "|" + hit.DocumentID
		if seen[key] {
			continue
		}
		seen[key] = true

		results = append(results, models.CandidateSearchHit{
			SessionID:     hit.SessionID,
			CandidateName: hit.CandidateName,
			FileName:      hit.FileName,
			FitScore:      hit.FitScore,
			Similarity:    hit.Similarity,
			Excerpt:       excerpt(hit.Text, excerptLength),
		})
		if len(results) == limit {
			break
		}
	}

	return results
}

func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
