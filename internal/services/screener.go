package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
)

var (
	ErrEmptyJobDescription = errors.New("job description is required")
	ErrNoResumes           = errors.New("at least one resume is required")
	ErrTooManyResumes      = errors.New("too many resumes in one request")
)

// ResumeFile is one uploaded resume held in memory.
type ResumeFile struct {
	FileName   string
	DocumentID string
	Data       []byte
}

type ScreenRequest struct {
	JobDescription string
	Resumes        []ResumeFile
}

// ProgressFunc is called once per resume after it has been extracted and analysed (or skipped).
type ProgressFunc func(done, total int, fileName string)

type Screener interface {
	Screen(ctx context.Context, req ScreenRequest, progress ProgressFunc) (*models.ScreeningReport, error)
}

type screenedCandidate struct {
	file     ResumeFile
	text     string
	analysis *models.CandidateAnalysis
}

type screener struct {
	extractor   ResumeExtractor
	analyzer    CandidateAnalyzer
	maxResumes  int
	concurrency int
}

func NewScreener(extractor ResumeExtractor, analyzer CandidateAnalyzer, maxResumes, concurrency int) Screener {
	if concurrency < 1 {
		concurrency = 1
	}
	return &screener{
		extractor:   extractor,
		analyzer:    analyzer,
		maxResumes:  maxResumes,
		concurrency: concurrency,
	}
}

func (s *screener) validate(req ScreenRequest) error {
	if strings.TrimSpace(req.JobDescription) == "" {
		return ErrEmptyJobDescription
	}
	if len(req.Resumes) == 0 {
		return ErrNoResumes
	}
	if s.maxResumes > 0 && len(req.Resumes) > s.maxResumes {
		return fmt.Errorf("%w: got %d, maximum is %d", ErrTooManyResumes, len(req.Resumes), s.maxResumes)
	}
	return nil
}

// Screen implements Screener.
func (s *screener) Screen(ctx context.Context, req ScreenRequest, progress ProgressFunc) (*models.ScreeningReport, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	total := len(req.Resumes)
	log.Printf("🔍 Screening %d resumes\n", total)

	var (
		mu       sync.Mutex
		done     int
		results  = make([]*screenedCandidate, total)
		skipped  = make([]*models.SkippedFile, total)
		reportFn = func(fileName string) {
			mu.Lock()
			done++
			current := done
			mu.Unlock()
			if progress != nil {
				progress(current, total, fileName)
			}
		}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, file := range req.Resumes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			text, err := s.extractor.ExtractText(file.FileName, file.Data)
			if err != nil {
				log.Printf("⚠️  Skipping %s: %v\n", file.FileName, err)
				skipped[i] = &models.SkippedFile{FileName: file.FileName, Reason: skipReason(err)}
				reportFn(file.FileName)
				return nil
			}

			analysis := s.analyzer.Analyze(gctx, req.JobDescription, text)
			results[i] = &screenedCandidate{file: file, text: text, analysis: analysis}

			reportFn(file.FileName)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("screening cancelled: %w", err)
	}

	report := buildReport(total, results, skipped)
	log.Printf("✅ Screening finished: %d analysed, %d recommended, %d skipped\n",
		report.Analyzed, report.Recommended, len(report.Skipped))

	return report, nil
}

func buildReport(total int, results []*screenedCandidate, skipped []*models.SkippedFile) *models.ScreeningReport {
	report := &models.ScreeningReport{
		TotalFiles: total,
		Candidates: []models.RankedCandidate{},
		Skipped:    []models.SkippedFile{},
	}

	var analysed []*screenedCandidate
	for _, r := range results {
		if r != nil {
			analysed = append(analysed, r)
		}
	}
	for _, sk := range skipped {
		if sk != nil {
			report.Skipped = append(report.Skipped, *sk)
		}
	}

	// Upload order is the tiebreaker.
	sort.SliceStable(analysed, func(i, j int) bool {
		return analysed[i].analysis.Score > analysed[j].analysis.Score
	})

	for i, r := range analysed {
		report.Candidates = append(report.Candidates, models.RankedCandidate{
			Rank:              i + 1,
			FileName:          r.file.FileName,
			DocumentID:        r.file.DocumentID,
			ResumeText:        r.text,
			CandidateAnalysis: *r.analysis,
		})
		if r.analysis.IsRecommended {
			report.Recommended++
		}
	}
	report.Analyzed = len(analysed)

	return report
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyDocument):
		return "no text could be extracted"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported file format"
	default:
		return fmt.Sprintf("could not read file: %v", err)
	}
}
