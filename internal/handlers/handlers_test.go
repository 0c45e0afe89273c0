package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
	"github.com/Harin-6044/Resume-Shortlister/internal/repositories"
	"github.com/Harin-6044/Resume-Shortlister/internal/services"
)

type uploadFile struct {
	field string
	name  string
	data  string
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files []uploadFile) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

type fakeScreener struct {
	req services.ScreenRequest
	err error
}

func (f *fakeScreener) Screen(_ context.Context, req services.ScreenRequest, _ services.ProgressFunc) (*models.ScreeningReport, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ScreeningReport{
		TotalFiles: len(req.Resumes),
		Analyzed:   len(req.Resumes),
		Candidates: []models.RankedCandidate{{
			Rank:              1,
			FileName:          req.Resumes[0].FileName,
			CandidateAnalysis: models.CandidateAnalysis{CandidateName: "Ada", Score: 88, IsRecommended: true},
		}},
		Skipped: []models.SkippedFile{},
	}, nil
}

func newScreenApp(screener services.Screener) *fiber.App {
	app := fiber.New()
	h := NewScreenHandler(screener, 3, 1024)
	app.Post("/api/v1/screen", h.HandleScreen)
	return app
}

func TestHandleScreen_Success(t *testing.T) {
	screener := &fakeScreener{}
	app := newScreenApp(screener)

	req := multipartRequest(t, "/api/v1/screen",
		map[string]string{"job_description": "  Senior Go engineer  "},
		[]uploadFile{{"resumes", "ada.pdf", "pdf-bytes"}, {"resumes[]", "bob.docx", "docx-bytes"}},
	)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report models.ScreeningReport
	decode(t, resp, &report)
	assert.Equal(t, 2, report.TotalFiles)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, "Ada", report.Candidates[0].CandidateName)

	assert.Equal(t, "Senior Go engineer", screener.req.JobDescription)
	require.Len(t, screener.req.Resumes, 2)
	assert.Equal(t, "ada.pdf", screener.req.Resumes[0].FileName)
	assert.Equal(t, []byte("docx-bytes"), screener.req.Resumes[1].Data)
}

func TestHandleScreen_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		files      []uploadFile
		screenErr  error
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing job description",
			fields:     map[string]string{"job_description": "   "},
			files:      []uploadFile{{"resumes", "a.pdf", "x"}},
			wantStatus: fiber.StatusBadRequest,
			wantError:  "job_description is required",
		},
		{
			name:       "no resumes",
			fields:     map[string]string{"job_description": "jd"},
			wantStatus: fiber.StatusBadRequest,
			wantError:  "at least one resume",
		},
		{
			name:   "too many resumes",
			fields: map[string]string{"job_description": "jd"},
			files: []uploadFile{
				{"resumes", "a.pdf", "x"}, {"resumes", "b.pdf", "x"}, {"resumes", "c.pdf", "x"}, {"resumes", "d.pdf", "x"},
			},
			wantStatus: fiber.StatusBadRequest,
			wantError:  "too many resumes",
		},
		{
			name:       "file too large",
			fields:     map[string]string{"job_description": "jd"},
			files:      []uploadFile{{"resumes", "big.pdf", string(make([]byte, 2048))}},
			wantStatus: fiber.StatusRequestEntityTooLarge,
			wantError:  "big.pdf is too large",
		},
		{
			name:       "screener failure",
			fields:     map[string]string{"job_description": "jd"},
			files:      []uploadFile{{"resumes", "a.pdf", "x"}},
			screenErr:  errors.New("boom"),
			wantStatus: fiber.StatusInternalServerError,
			wantError:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newScreenApp(&fakeScreener{err: tt.screenErr})

			resp, err := app.Test(multipartRequest(t, "/api/v1/screen", tt.fields, tt.files), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body map[string]string
			decode(t, resp, &body)
			assert.Contains(t, body["error"], tt.wantError)
		})
	}
}

func TestHandleScreen_NotMultipart(t *testing.T) {
	app := newScreenApp(&fakeScreener{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/screen", bytes.NewBufferString(`{"job_description":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "failed to parse multipart form", body["error"])
}

type memSessions struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]models.ScreeningSession
	documents []models.ResumeDocument
	createErr error
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[uuid.UUID]models.ScreeningSession)}
}

func (m *memSessions) CreateWithDocuments(session *models.ScreeningSession, documents []models.ResumeDocument) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	m.sessions[session.ID] = *session
	for _, d := range documents {
		d.SessionID = session.ID
		m.documents = append(m.documents, d)
	}
	return nil
}

func (m *memSessions) FindByID(id uuid.UUID) (*models.ScreeningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}
	return &s, nil
}

func (m *memSessions) UpdateStatus(uuid.UUID, models.SessionStatus) error { return nil }

func (m *memSessions) UpdateCompleted(uuid.UUID, repositories.SessionTotals) error { return nil }

func (m *memSessions) UpdateError(uuid.UUID, string) error { return nil }

func (m *memSessions) FindPendingSessions(int) ([]models.ScreeningSession, error) { return nil, nil }

type memCandidates struct {
	results map[uuid.UUID][]models.CandidateResult
}

func (m *memCandidates) ReplaceForSession(id uuid.UUID, results []models.CandidateResult) error {
	m.results[id] = results
	return nil
}

func (m *memCandidates) FindBySession(id uuid.UUID) ([]models.CandidateResult, error) {
	return m.results[id], nil
}

type memStorage struct {
	files   map[string][]byte
	deleted []string
}

func (s *memStorage) EnsureReady(context.Context) error { return nil }

func (s *memStorage) Save(_ context.Context, fileType, name string, data []byte) (string, error) {
	key := fmt.Sprintf("%s_%d_%s", fileType, len(s.files), name)
	s.files[key] = data
	return key, nil
}

func (s *memStorage) Read(_ context.Context, key string) ([]byte, error) { return s.files[key], nil }

func (s *memStorage) Delete(_ context.Context, key string) error {
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type recordingWorker struct {
	enqueued []uuid.UUID
}

func (w *recordingWorker) Start(context.Context) {}

func (w *recordingWorker) Stop() {}

func (w *recordingWorker) EnqueueJob(id uuid.UUID) { w.enqueued = append(w.enqueued, id) }

type sessionFixture struct {
	app        *fiber.App
	sessions   *memSessions
	candidates *memCandidates
	storage    *memStorage
	worker     *recordingWorker
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		sessions:   newMemSessions(),
		candidates: &memCandidates{results: make(map[uuid.UUID][]models.CandidateResult)},
		storage:    &memStorage{files: make(map[string][]byte)},
		worker:     &recordingWorker{},
	}
	h := NewSessionHandler(f.sessions, f.candidates, f.storage, f.worker, 5, 1024)
	f.app = fiber.New()
	f.app.Post("/api/v1/sessions", h.HandleCreate)
	f.app.Get("/api/v1/sessions/:id", h.HandleGet)
	return f
}

func TestHandleCreateSession_NotMultipart(t *testing.T) {
	f := newSessionFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString(`{"job_description":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "failed to parse multipart form", body["error"])
	assert.Empty(t, f.worker.enqueued)
}

func TestHandleCreateSession(t *testing.T) {
	f := newSessionFixture()

	req := multipartRequest(t, "/api/v1/sessions",
		map[string]string{"job_title": "Backend", "job_description": "Go and Postgres"},
		[]uploadFile{{"resumes", "ada.pdf", "a"}, {"resumes", "bob.docx", "b"}},
	)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var body models.CreateSessionResponse
	decode(t, resp, &body)
	assert.Equal(t, "queued", body.Status)
	assert.Equal(t, 2, body.TotalFiles)

	id, err := uuid.Parse(body.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, f.worker.enqueued)
	assert.Len(t, f.storage.files, 2)

	require.Len(t, f.sessions.documents, 2)
	assert.Equal(t, "ada.pdf", f.sessions.documents[0].OriginalFileName)
	assert.Equal(t, 0, f.sessions.documents[0].Position)
	assert.Equal(t, 1, f.sessions.documents[1].Position)
	assert.Equal(t, id, f.sessions.documents[1].SessionID)
}

func TestHandleCreateSession_RejectsUnsupportedFiles(t *testing.T) {
	f := newSessionFixture()

	req := multipartRequest(t, "/api/v1/sessions",
		map[string]string{"job_description": "Go"},
		[]uploadFile{{"resumes", "ada.pdf", "a"}, {"resumes", "notes.txt", "b"}},
	)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.storage.files)
	assert.Empty(t, f.worker.enqueued)
}

func TestHandleCreateSession_CleansUpWhenDatabaseFails(t *testing.T) {
	f := newSessionFixture()
	f.sessions.createErr = errors.New("db down")

	req := multipartRequest(t, "/api/v1/sessions",
		map[string]string{"job_description": "Go"},
		[]uploadFile{{"resumes", "ada.pdf", "a"}},
	)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, f.storage.files)
	assert.Len(t, f.storage.deleted, 1)
	assert.Empty(t, f.worker.enqueued)
}

func TestHandleGetSession(t *testing.T) {
	f := newSessionFixture()

	completed := &models.ScreeningSession{
		JobTitle: "Backend", JobDescription: "Go", Status: models.StatusCompleted,
		TotalFiles: 3, Analyzed: 2, Recommended: 1, Skipped: 1,
		SkippedFiles: models.SkippedFiles{{FileName: "scan.pdf", Reason: "no text could be extracted"}},
	}
	require.NoError(t, f.sessions.CreateWithDocuments(completed, nil))
	f.candidates.results[completed.ID] = []models.CandidateResult{
		{FileName: "ada.pdf", CandidateName: "Ada", Score: 90, IsRecommended: true, Rank: 1},
		{FileName: "bob.pdf", CandidateName: "Bob", Score: 40, Rank: 2},
	}

	errMsg := "screening failed: quota"
	failed := &models.ScreeningSession{JobDescription: "Go", Status: models.StatusFailed, ErrorMessage: &errMsg}
	require.NoError(t, f.sessions.CreateWithDocuments(failed, nil))

	queued := &models.ScreeningSession{JobDescription: "Go", Status: models.StatusQueued}
	require.NoError(t, f.sessions.CreateWithDocuments(queued, nil))

	t.Run("completed", func(t *testing.T) {
		resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+completed.ID.String(), nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body models.SessionResponse
		decode(t, resp, &body)
		assert.Equal(t, "completed", body.Status)
		assert.Equal(t, 1, body.Recommended)
		require.Len(t, body.Candidates, 2)
		assert.Equal(t, "Ada", body.Candidates[0].CandidateName)
		assert.Equal(t, 1, body.Candidates[0].Rank)
		assert.Equal(t, 1, body.Skipped)
		assert.Equal(t, []models.SkippedFile{{FileName: "scan.pdf", Reason: "no text could be extracted"}}, body.SkippedFiles)
		assert.Nil(t, body.ErrorMessage)
	})

	t.Run("failed", func(t *testing.T) {
		resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+failed.ID.String(), nil), -1)
		require.NoError(t, err)

		var body models.SessionResponse
		decode(t, resp, &body)
		assert.Equal(t, "failed", body.Status)
		require.NotNil(t, body.ErrorMessage)
		assert.Equal(t, errMsg, *body.ErrorMessage)
		assert.Empty(t, body.Candidates)
	})

	t.Run("queued", func(t *testing.T) {
		resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+queued.ID.String(), nil), -1)
		require.NoError(t, err)

		var body models.SessionResponse
		decode(t, resp, &body)
		assert.Equal(t, "queued", body.Status)
		assert.Empty(t, body.Candidates)
	})

	t.Run("not found", func(t *testing.T) {
		resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+uuid.NewString(), nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad id", func(t *testing.T) {
		resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/not-a-uuid", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

type fakeSearch struct {
	query string
	limit int
	err   error
}

func (f *fakeSearch) IndexCandidates(context.Context, string, []models.RankedCandidate) error {
	return nil
}

func (f *fakeSearch) Search(_ context.Context, query string, limit int) ([]models.CandidateSearchHit, error) {
	f.query, f.limit = query, limit
	if f.err != nil {
		return nil, f.err
	}
	return []models.CandidateSearchHit{{SessionID: "s1", CandidateName: "Ada", FitScore: 90, Similarity: 0.8}}, nil
}

func TestHandleSearch(t *testing.T) {
	search := &fakeSearch{}
	app := fiber.New()
	app.Get("/api/v1/candidates/search", NewSearchHandler(search).HandleSearch)

	t.Run("ok", func(t *testing.T) {
		target := "/api/v1/candidates/search?q=" + url.QueryEscape("kubernetes operators") + "&limit=5"
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Query   string                      `json:"query"`
			Results []models.CandidateSearchHit `json:"results"`
		}
		decode(t, resp, &body)
		assert.Equal(t, "kubernetes operators", body.Query)
		require.Len(t, body.Results, 1)
		assert.Equal(t, "Ada", body.Results[0].CandidateName)
		assert.Equal(t, "kubernetes operators", search.query)
		assert.Equal(t, 5, search.limit)
	})

	t.Run("query too short", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/candidates/search?q=k", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		decode(t, resp, &body)
		assert.Equal(t, "query must be at least 2", body["error"])
	})

	t.Run("limit out of range", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/candidates/search?q=go&limit=500", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleSearch_Disabled(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/candidates/search", NewSearchHandler(&fakeSearch{err: services.ErrSearchDisabled}).HandleSearch)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/candidates/search?q=golang", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, services.ErrSearchDisabled.Error(), body["error"])
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "job_description", toSnakeCase("JobDescription"))
	assert.Equal(t, "query", toSnakeCase("Query"))
}
