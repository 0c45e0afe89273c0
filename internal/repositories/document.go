package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
)

type DocumentRepository interface {
	FindBySession(sessionID uuid.UUID) ([]models.ResumeDocument, error)
	DeleteBySession(sessionID uuid.UUID) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// FindBySession returns the session's resumes in upload order.
func (d *documentRepository) FindBySession(sessionID uuid.UUID) ([]models.ResumeDocument, error) {
	var docs []models.ResumeDocument
	if err := d.db.Where("session_id = ?", sessionID).Order("position ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}

	return docs, nil
}

// DeleteBySession removes the session's document rows once their files are gone.
func (d *documentRepository) DeleteBySession(sessionID uuid.UUID) error {
	if err := d.db.Where("session_id = ?", sessionID).Delete(&models.ResumeDocument{}).Error; err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}

	return nil
}
