package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

type ScreenRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
}

func (r *ScreenRequest) Validate() error {
	return validate.Struct(r)
}

type CreateSessionRequest struct {
	JobTitle       string `json:"job_title" validate:"max=200"`
	JobDescription string `json:"job_description" validate:"required"`
}

func (r *CreateSessionRequest) Validate() error {
	return validate.Struct(r)
}

type CreateSessionResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	TotalFiles int    `json:"total_files"`
}

type SessionResponse struct {
	ID           string            `json:"id"`
	JobTitle     string            `json:"job_title,omitempty"`
	Status       string            `json:"status"`
	TotalFiles   int               `json:"total_files"`
	Analyzed     int               `json:"analyzed"`
	Recommended  int               `json:"recommended"`
	Skipped      int               `json:"skipped"`
	SkippedFiles []SkippedFile     `json:"skipped_files,omitempty"`
	Candidates   []RankedCandidate `json:"candidates,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
}

type SearchRequest struct {
	Query string `query:"q" validate:"required,min=2"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=50"`
}

func (r *SearchRequest) Validate() error {
	return validate.Struct(r)
}

type CandidateSearchHit struct {
	SessionID     string  `json:"session_id"`
	CandidateName string  `json:"candidate_name"`
	FileName      string  `json:"file_name"`
	FitScore      int     `json:"fit_score"`
	Similarity    float32 `json:"similarity"`
	Excerpt       string  `json:"excerpt"`
}
