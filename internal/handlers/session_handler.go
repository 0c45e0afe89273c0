package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
	"github.com/Harin-6044/Resume-Shortlister/internal/repositories"
	"github.com/Harin-6044/Resume-Shortlister/internal/services"
)

type SessionHandler struct {
	sessionRepo   repositories.SessionRepository
	candidateRepo repositories.CandidateRepository
	storage       services.StorageService
	worker        services.Worker
	maxFiles      int
	maxFileSize   int64
}

func NewSessionHandler(
	sessionRepo repositories.SessionRepository,
	candidateRepo repositories.CandidateRepository,
	storage services.StorageService,
	worker services.Worker,
	maxFiles int,
	maxFileSize int64,
) *SessionHandler {
	return &SessionHandler{
		sessionRepo:   sessionRepo,
		candidateRepo: candidateRepo,
		storage:       storage,
		worker:        worker,
		maxFiles:      maxFiles,
		maxFileSize:   maxFileSize,
	}
}

// HandleCreate handles POST /sessions
func (h *SessionHandler) HandleCreate(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errorResponse(c, fiber.NewError(fiber.StatusBadRequest, "failed to parse multipart form"))
	}

	req := models.CreateSessionRequest{
		JobTitle:       strings.TrimSpace(c.FormValue("job_title")),
		JobDescription: strings.TrimSpace(c.FormValue("job_description")),
	}
	if err := req.Validate(); err != nil {
		return errorResponse(c, err)
	}

	resumes, err := readResumes(resumeHeaders(form), h.maxFiles, h.maxFileSize)
	if err != nil {
		return errorResponse(c, err)
	}
	for _, resume := range resumes {
		if !services.IsSupportedResume(resume.FileName) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("%s: only PDF and DOCX resumes are accepted", resume.FileName),
			})
		}
	}

	ctx := c.UserContext()
	documents := make([]models.ResumeDocument, 0, len(resumes))
	for i, resume := range resumes {
		key, err := h.storage.Save(ctx, "resume", resume.FileName, resume.Data)
		if err != nil {
			h.cleanup(ctx, documents)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save %s: %v", resume.FileName, err),
			})
		}
		documents = append(documents, models.ResumeDocument{
			StorageKey:       key,
			OriginalFileName: resume.FileName,
			SizeBytes:        int64(len(resume.Data)),
			Position:         i,
		})
	}

	session := &models.ScreeningSession{
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		Status:         models.StatusQueued,
		TotalFiles:     len(documents),
	}
	if err := h.sessionRepo.CreateWithDocuments(session, documents); err != nil {
		// Cleanup uploaded files if database insert fails
		h.cleanup(ctx, documents)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create screening session",
		})
	}

	h.worker.EnqueueJob(session.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.CreateSessionResponse{
		ID:         session.ID.String(),
		Status:     string(models.StatusQueued),
		TotalFiles: session.TotalFiles,
	})
}

// HandleGet handles GET /sessions/:id
func (h *SessionHandler) HandleGet(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	session, err := h.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		}
		return errorResponse(c, err)
	}

	response := models.SessionResponse{
		ID:          session.ID.String(),
		JobTitle:    session.JobTitle,
		Status:      string(session.Status),
		TotalFiles:  session.TotalFiles,
		Analyzed:    session.Analyzed,
		Recommended: session.Recommended,
		Skipped:     session.Skipped,
	}

	switch session.Status {
	case models.StatusCompleted:
		results, err := h.candidateRepo.FindBySession(sessionID)
		if err != nil {
			return errorResponse(c, err)
		}
		response.SkippedFiles = session.SkippedFiles
		response.Candidates = make([]models.RankedCandidate, 0, len(results))
		for _, result := range results {
			response.Candidates = append(response.Candidates, result.ToRanked())
		}
	case models.StatusFailed:
		response.ErrorMessage = session.ErrorMessage
	}

	return c.JSON(response)
}

func (h *SessionHandler) cleanup(ctx context.Context, documents []models.ResumeDocument) {
	for _, doc := range documents {
		if err := h.storage.Delete(ctx, doc.StorageKey); err != nil {
			log.Printf("⚠️  Failed to clean up %s: %v\n", doc.StorageKey, err)
		}
	}
}
