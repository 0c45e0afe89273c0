package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
)

type SessionRepository interface {
	CreateWithDocuments(session *models.ScreeningSession, documents []models.ResumeDocument) error
	FindByID(id uuid.UUID) (*models.ScreeningSession, error)
	UpdateStatus(id uuid.UUID, status models.SessionStatus) error
	UpdateCompleted(id uuid.UUID, totals SessionTotals) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingSessions(limit int) ([]models.ScreeningSession, error)
}

type SessionTotals struct {
	Analyzed    int
	Recommended int
	Skipped     models.SkippedFiles
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// CreateWithDocuments stores the session and its uploaded resumes in one transaction.
func (r *sessionRepository) CreateWithDocuments(session *models.ScreeningSession, documents []models.ResumeDocument) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		for i := range documents {
			documents[i].SessionID = session.ID
		}
		if len(documents) > 0 {
			if err := tx.Create(&documents).Error; err != nil {
				return fmt.Errorf("failed to create documents: %w", err)
			}
		}
		return nil
	})
}

func (r *sessionRepository) FindByID(id uuid.UUID) (*models.ScreeningSession, error) {
	var session models.ScreeningSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) UpdateStatus(id uuid.UUID, status models.SessionStatus) error {
	return r.update(id, map[string]interface{}{
		"status": status,
	})
}

func (r *sessionRepository) UpdateCompleted(id uuid.UUID, totals SessionTotals) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusCompleted,
		"analyzed":      totals.Analyzed,
		"recommended":   totals.Recommended,
		"skipped":       len(totals.Skipped),
		"skipped_files": totals.Skipped,
		"error_message": nil,
	})
}

func (r *sessionRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
	})
}

func (r *sessionRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := r.db.Model(&models.ScreeningSession{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update session: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *sessionRepository) FindPendingSessions(limit int) ([]models.ScreeningSession, error) {
	var sessions []models.ScreeningSession
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&sessions).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending sessions: %w", err)
	}

	return sessions, nil
}
