package models

import (
	"time"

	"github.com/google/uuid"
)

type ResumeDocument struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID        uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	StorageKey       string    `gorm:"type:text;not null" json:"storage_key"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	SizeBytes        int64     `json:"size_bytes"`
	Position         int       `gorm:"not null;default:0" json:"position"`
	CreatedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ResumeDocument) TableName() string {
	return "resume_documents"
}
