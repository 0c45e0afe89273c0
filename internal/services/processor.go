package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
	"github.com/Harin-6044/Resume-Shortlister/internal/repositories"
)

// SessionProcessor runs the screening pipeline for a stored session.
type SessionProcessor interface {
	ProcessSession(ctx context.Context, sessionID uuid.UUID) error
}

type sessionProcessor struct {
	sessionRepo   repositories.SessionRepository
	docRepo       repositories.DocumentRepository
	candidateRepo repositories.CandidateRepository
	storage       StorageService
	screener      Screener
	search        CandidateSearchService
	events        EventPublisher
}

func NewSessionProcessor(
	sessionRepo repositories.SessionRepository,
	docRepo repositories.DocumentRepository,
	candidateRepo repositories.CandidateRepository,
	storage StorageService,
	screener Screener,
	search CandidateSearchService,
	events EventPublisher,
) SessionProcessor {
	return &sessionProcessor{
		sessionRepo:   sessionRepo,
		docRepo:       docRepo,
		candidateRepo: candidateRepo,
		storage:       storage,
		screener:      screener,
		search:        search,
		events:        events,
	}
}

func (p *sessionProcessor) ProcessSession(ctx context.Context, sessionID uuid.UUID) error {
	// Update status to processing
	if err := p.sessionRepo.UpdateStatus(sessionID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	p.publish(ctx, sessionID, models.StatusProcessing, "screening started")

	log.Printf("🔄 Starting screening for session: %s\n", sessionID)

	session, err := p.sessionRepo.FindByID(sessionID)
	if err != nil {
		return p.fail(ctx, sessionID, fmt.Errorf("failed to get session: %w", err))
	}

	documents, err := p.docRepo.FindBySession(sessionID)
	if err != nil {
		return p.fail(ctx, sessionID, fmt.Errorf("failed to get documents: %w", err))
	}
	// Uploads are only kept until the session finishes, whatever the outcome.
	defer p.purgeUploads(context.WithoutCancel(ctx), sessionID, documents)

	// Step 1: Load resumes from storage
	log.Printf("📄 Loading %d resumes...\n", len(documents))
	resumes := make([]ResumeFile, 0, len(documents))
	for _, doc := range documents {
		data, err := p.storage.Read(ctx, doc.StorageKey)
		if err != nil {
			return p.fail(ctx, sessionID, fmt.Errorf("failed to read %s: %w", doc.OriginalFileName, err))
		}
		resumes = append(resumes, ResumeFile{
			FileName:   doc.OriginalFileName,
			DocumentID: doc.ID.String(),
			Data:       data,
		})
	}

	// Step 2: Screen
	report, err := p.screener.Screen(ctx, ScreenRequest{
		JobDescription: session.JobDescription,
		Resumes:        resumes,
	}, func(done, total int, fileName string) {
		log.Printf("⏳ Session %s: %d/%d (%s)\n", sessionID, done, total, fileName)
	})
	if err != nil {
		return p.fail(ctx, sessionID, fmt.Errorf("screening failed: %w", err))
	}

	// Step 3: Save results
	if err := p.candidateRepo.ReplaceForSession(sessionID, toCandidateResults(report.Candidates)); err != nil {
		return p.fail(ctx, sessionID, fmt.Errorf("failed to save results: %w", err))
	}

	err = p.sessionRepo.UpdateCompleted(sessionID, repositories.SessionTotals{
		Analyzed:    report.Analyzed,
		Recommended: report.Recommended,
		Skipped:     models.SkippedFiles(report.Skipped),
	})
	if err != nil {
		return fmt.Errorf("failed to mark session completed: %w", err)
	}

	p.publish(ctx, sessionID, models.StatusCompleted,
		fmt.Sprintf("%d candidates ranked, %d recommended", report.Analyzed, report.Recommended))
	log.Printf("✅ Session %s completed\n", sessionID)

	// Step 4: Index for search; a failure here does not fail the session
	if err := p.search.IndexCandidates(ctx, sessionID.String(), report.Candidates); err != nil {
		log.Printf("⚠️  Warning: Failed to index candidates for session %s: %v\n", sessionID, err)
	}

	return nil
}

func (p *sessionProcessor) fail(ctx context.Context, sessionID uuid.UUID, err error) error {
	if updateErr := p.sessionRepo.UpdateError(sessionID, err.Error()); updateErr != nil {
		log.Printf("⚠️  Failed to record error for session %s: %v\n", sessionID, updateErr)
	}
	p.publish(ctx, sessionID, models.StatusFailed, err.Error())
	return err
}

// purgeUploads deletes the stored resume files and their document rows.
func (p *sessionProcessor) purgeUploads(ctx context.Context, sessionID uuid.UUID, documents []models.ResumeDocument) {
	for _, doc := range documents {
		if err := p.storage.Delete(ctx, doc.StorageKey); err != nil {
			log.Printf("⚠️  Failed to delete %s for session %s: %v\n", doc.StorageKey, sessionID, err)
			return
		}
	}

	if err := p.docRepo.DeleteBySession(sessionID); err != nil {
		log.Printf("⚠️  Failed to delete documents for session %s: %v\n", sessionID, err)
		return
	}
	log.Printf("🧹 Removed %d uploaded resumes for session %s\n", len(documents), sessionID)
}

func (p *sessionProcessor) publish(ctx context.Context, sessionID uuid.UUID, status models.SessionStatus, message string) {
	err := p.events.PublishSessionUpdate(ctx, SessionEvent{
		SessionID: sessionID.String(),
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("⚠️  Failed to publish %s event for session %s: %v\n", status, sessionID, err)
	}
}

func toCandidateResults(candidates []models.RankedCandidate) []models.CandidateResult {
	results := make([]models.CandidateResult, 0, len(candidates))
	for _, c := range candidates {
		result := models.CandidateResult{
			FileName:      c.FileName,
			CandidateName: c.CandidateName,
			Score:         c.Score,
			Summary:       c.Summary,
			Reasoning:     c.Reasoning,
			IsRecommended: c.IsRecommended,
			Rank:          c.Rank,
		}
		if id, err := uuid.Parse(c.DocumentID); err == nil {
			result.DocumentID = &id
		}
		if c.Error != "" {
			errMsg := c.Error
			result.ErrorMessage = &errMsg
		}
		results = append(results, result)
	}
	return results
}
