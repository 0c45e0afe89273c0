package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	StatusQueued     SessionStatus = "queued"
	StatusProcessing SessionStatus = "processing"
	StatusCompleted  SessionStatus = "completed"
	StatusFailed     SessionStatus = "failed"
)

// ScreeningSession is one job description screened against a batch of uploaded resumes.
type ScreeningSession struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobTitle       string        `gorm:"type:text" json:"job_title"`
	JobDescription string        `gorm:"type:text;not null" json:"job_description"`
	Status         SessionStatus `gorm:"not null;default:'queued'" json:"status"`
	TotalFiles     int           `gorm:"not null;default:0" json:"total_files"`
	Analyzed       int           `gorm:"not null;default:0" json:"analyzed"`
	Recommended    int           `gorm:"not null;default:0" json:"recommended"`
	Skipped        int           `gorm:"not null;default:0" json:"skipped"`
	SkippedFiles   SkippedFiles  `gorm:"type:jsonb" json:"skipped_files,omitempty"`
	ErrorMessage   *string       `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Documents  []ResumeDocument  `gorm:"foreignKey:SessionID" json:"-"`
	Candidates []CandidateResult `gorm:"foreignKey:SessionID" json:"-"`
}

func (ScreeningSession) TableName() string {
	return "screening_sessions"
}

// SkippedFiles is stored as a jsonb array.
type SkippedFiles []SkippedFile

func (s SkippedFiles) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode skipped files: %w", err)
	}
	return string(data), nil
}

func (s *SkippedFiles) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type %T for skipped files", value)
	}
}
