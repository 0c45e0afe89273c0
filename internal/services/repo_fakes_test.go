package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
	"github.com/Harin-6044/Resume-Shortlister/internal/repositories"
)

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.ScreeningSession
	statuses []models.SessionStatus
	// docs receives the documents passed to CreateWithDocuments when set.
	docs *memDocumentRepo
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]*models.ScreeningSession)}
}

func (r *memSessionRepo) CreateWithDocuments(session *models.ScreeningSession, documents []models.ResumeDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.Status == "" {
		session.Status = models.StatusQueued
	}
	copied := *session
	r.sessions[session.ID] = &copied

	for i := range documents {
		documents[i].SessionID = session.ID
		if documents[i].ID == uuid.Nil {
			documents[i].ID = uuid.New()
		}
		if r.docs != nil {
			r.docs.docs = append(r.docs.docs, documents[i])
		}
	}
	return nil
}

func (r *memSessionRepo) FindByID(id uuid.UUID) (*models.ScreeningSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}
	copied := *session
	return &copied, nil
}

func (r *memSessionRepo) UpdateStatus(id uuid.UUID, status models.SessionStatus) error {
	return r.mutate(id, func(s *models.ScreeningSession) {
		s.Status = status
	})
}

func (r *memSessionRepo) UpdateCompleted(id uuid.UUID, totals repositories.SessionTotals) error {
	return r.mutate(id, func(s *models.ScreeningSession) {
		s.Status = models.StatusCompleted
		s.Analyzed = totals.Analyzed
		s.Recommended = totals.Recommended
		s.Skipped = len(totals.Skipped)
		s.SkippedFiles = totals.Skipped
		s.ErrorMessage = nil
	})
}

func (r *memSessionRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.mutate(id, func(s *models.ScreeningSession) {
		s.Status = models.StatusFailed
		s.ErrorMessage = &errorMsg
	})
}

func (r *memSessionRepo) FindPendingSessions(limit int) ([]models.ScreeningSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []models.ScreeningSession
	for _, s := range r.sessions {
		if s.Status == models.StatusQueued && len(pending) < limit {
			pending = append(pending, *s)
		}
	}
	return pending, nil
}

func (r *memSessionRepo) mutate(id uuid.UUID, fn func(s *models.ScreeningSession)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}
	fn(session)
	r.statuses = append(r.statuses, session.Status)
	return nil
}

func (r *memSessionRepo) Statuses() []models.SessionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.SessionStatus(nil), r.statuses...)
}

type memDocumentRepo struct {
	docs      []models.ResumeDocument
	err       error
	deleteErr error
}

func (r *memDocumentRepo) FindBySession(sessionID uuid.UUID) ([]models.ResumeDocument, error) {
	if r.err != nil {
		return nil, r.err
	}
	var docs []models.ResumeDocument
	for _, d := range r.docs {
		if d.SessionID == sessionID {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (r *memDocumentRepo) DeleteBySession(sessionID uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.docs[:0]
	for _, d := range r.docs {
		if d.SessionID != sessionID {
			kept = append(kept, d)
		}
	}
	r.docs = kept
	return nil
}

type memCandidateRepo struct {
	results map[uuid.UUID][]models.CandidateResult
	err     error
}

func newMemCandidateRepo() *memCandidateRepo {
	return &memCandidateRepo{results: make(map[uuid.UUID][]models.CandidateResult)}
}

func (r *memCandidateRepo) ReplaceForSession(sessionID uuid.UUID, results []models.CandidateResult) error {
	if r.err != nil {
		return r.err
	}
	for i := range results {
		results[i].SessionID = sessionID
	}
	r.results[sessionID] = results
	return nil
}

func (r *memCandidateRepo) FindBySession(sessionID uuid.UUID) ([]models.CandidateResult, error) {
	return r.results[sessionID], nil
}

type memStorage struct {
	mu        sync.Mutex
	files     map[string][]byte
	deleteErr error
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (s *memStorage) EnsureReady(context.Context) error { return nil }

func (s *memStorage) Save(_ context.Context, fileType, originalName string, data []byte) (string, error) {
	key, err := storageKey(fileType, originalName)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return key, nil
}

func (s *memStorage) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrFileNotFound)
	}
	return data, nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.files, key)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []SessionEvent
	err    error
}

func (p *recordingPublisher) PublishSessionUpdate(_ context.Context, event SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Statuses() []models.SessionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	var statuses []models.SessionStatus
	for _, e := range p.events {
		statuses = append(statuses, e.Status)
	}
	return statuses
}

type recordingSearch struct {
	indexed map[string][]models.RankedCandidate
	err     error
}

func (s *recordingSearch) IndexCandidates(_ context.Context, sessionID string, candidates []models.RankedCandidate) error {
	if s.indexed == nil {
		s.indexed = make(map[string][]models.RankedCandidate)
	}
	s.indexed[sessionID] = candidates
	return s.err
}

func (s *recordingSearch) Search(context.Context, string, int) ([]models.CandidateSearchHit, error) {
	return nil, errors.New("not implemented")
}
