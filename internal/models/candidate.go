package models

import (
	"time"

	"github.com/google/uuid"
)

// CandidateAnalysis is the structured verdict returned by the LLM for one resume.
type CandidateAnalysis struct {
	CandidateName string `json:"candidate_name"`
	Score         int    `json:"score"`
	Summary       string `json:"summary"`
	Reasoning     string `json:"reasoning"`
	IsRecommended bool   `json:"is_recommended"`
	Error         string `json:"error,omitempty"`
}

// Failed reports whether the analysis is a fallback produced after an LLM or parse failure.
func (a *CandidateAnalysis) Failed() bool {
	return a.Error != ""
}

type RankedCandidate struct {
	Rank       int    `json:"rank"`
	FileName   string `json:"file_name"`
	DocumentID string `json:"document_id,omitempty"`
	// ResumeText is kept in memory for indexing and never serialised.
	ResumeText string `json:"-"`
	CandidateAnalysis
}

type SkippedFile struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

type ScreeningReport struct {
	TotalFiles  int               `json:"total_files"`
	Analyzed    int               `json:"analyzed"`
	Recommended int               `json:"recommended"`
	Candidates  []RankedCandidate `json:"candidates"`
	Skipped     []SkippedFile     `json:"skipped"`
}

// CandidateResult is the persisted form of a RankedCandidate inside a session.
type CandidateResult struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	DocumentID    *uuid.UUID `gorm:"type:uuid" json:"document_id,omitempty"`
	FileName      string     `gorm:"type:text" json:"file_name"`
	CandidateName string     `gorm:"type:text" json:"candidate_name"`
	Score         int        `gorm:"not null;default:0" json:"score"`
	Summary       string     `gorm:"type:text" json:"summary"`
	Reasoning     string     `gorm:"type:text" json:"reasoning"`
	IsRecommended bool       `gorm:"not null;default:false" json:"is_recommended"`
	Rank          int        `gorm:"not null;default:0" json:"rank"`
	ErrorMessage  *string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CandidateResult) TableName() string {
	return "candidate_results"
}

// ToRanked converts a stored result back into its API form.
func (r CandidateResult) ToRanked() RankedCandidate {
	ranked := RankedCandidate{
		Rank:     r.Rank,
		FileName: r.FileName,
		CandidateAnalysis: CandidateAnalysis{
			CandidateName: r.CandidateName,
			Score:         r.Score,
			Summary:       r.Summary,
			Reasoning:     r.Reasoning,
			IsRecommended: r.IsRecommended,
		},
	}
	if r.DocumentID != nil {
		ranked.DocumentID = r.DocumentID.String()
	}
	if r.ErrorMessage != nil {
		ranked.Error = *r.ErrorMessage
	}
	return ranked
}
