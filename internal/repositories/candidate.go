package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
)

type CandidateRepository interface {
	ReplaceForSession(sessionID uuid.UUID, results []models.CandidateResult) error
	FindBySession(sessionID uuid.UUID) ([]models.CandidateResult, error)
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// ReplaceForSession swaps a session's results atomically so a re-run never leaves a mix.
func (r *candidateRepository) ReplaceForSession(sessionID uuid.UUID, results []models.CandidateResult) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.CandidateResult{}).Error; err != nil {
			return fmt.Errorf("failed to clear candidate results: %w", err)
		}

		if len(results) == 0 {
			return nil
		}

		for i := range results {
			results[i].SessionID = sessionID
		}
		if err := tx.Create(&results).Error; err != nil {
			return fmt.Errorf("failed to create candidate results: %w", err)
		}
		return nil
	})
}

// FindBySession returns results ordered by rank.
func (r *candidateRepository) FindBySession(sessionID uuid.UUID) ([]models.CandidateResult, error) {
	var results []models.CandidateResult
	if err := r.db.Where("session_id = ?", sessionID).Order("rank ASC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to find candidate results: %w", err)
	}
	return results, nil
}
