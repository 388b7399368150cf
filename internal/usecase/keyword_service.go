package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linkscribe/backend/internal/domain"
)

// timestampLayouts are the accepted schedule formats in CSV imports, tried
// in order
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ImportResult summarizes one CSV import
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// KeywordService manages the scheduled keyword queue
type KeywordService struct {
	repo domain.KeywordRepository
}

// NewKeywordService creates a keyword service over a repository
func NewKeywordService(repo domain.KeywordRepository) *KeywordService {
	return &KeywordService{repo: repo}
}

// ImportCSV reads `keyword,scheduled_at` rows and creates pending jobs. A
// header row is detected and skipped. Bad rows are reported and skipped;
// the rest of the file still imports.
func (s *KeywordService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // validate per row, not per file
	reader.TrimLeadingSpace = true

	result := &ImportResult{}
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed CSV: %v", domain.ErrInvalidRequest, err)
		}
		line++

		if line == 1 && isHeaderRow(record) {
			continue
		}

		job, rowErr := parseKeywordRow(record)
		if rowErr != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, rowErr))
			continue
		}

		if err := s.repo.Save(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to save keyword %q: %w", job.Keyword, err)
		}
		result.Imported++
	}

	log.Printf("[KEYWORDS] CSV import: %d imported, %d skipped", result.Imported, result.Skipped)
	return result, nil
}

// Add creates one pending job directly
func (s *KeywordService) Add(ctx context.Context, keyword string, scheduledAt time.Time) (*domain.KeywordJob, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, domain.ErrInvalidRequest
	}

	job := newJob(keyword, scheduledAt)
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// List returns every job, earliest first
func (s *KeywordService) List(ctx context.Context) ([]domain.KeywordJob, error) {
	return s.repo.List(ctx)
}

// Delete removes a job by id
func (s *KeywordService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DueJobs returns pending jobs whose schedule has passed
func (s *KeywordService) DueJobs(ctx context.Context, now time.Time) ([]domain.KeywordJob, error) {
	return s.repo.DueJobs(ctx, now)
}

// MarkRunning flags a job as picked up by the pipeline
func (s *KeywordService) MarkRunning(ctx context.Context, job *domain.KeywordJob) error {
	job.Status = domain.JobStatusRunning
	job.LastError = ""
	return s.repo.Save(ctx, job)
}

// MarkPublished records a successful publish and the resulting post URL
func (s *KeywordService) MarkPublished(ctx context.Context, job *domain.KeywordJob, postURL string) error {
	job.Status = domain.JobStatusPublished
	job.PostURL = postURL
	job.LastError = ""
	return s.repo.Save(ctx, job)
}

// MarkFailed records a pipeline failure with its reason
func (s *KeywordService) MarkFailed(ctx context.Context, job *domain.KeywordJob, cause error) error {
	job.Status = domain.JobStatusFailed
	job.LastError = cause.Error()
	return s.repo.Save(ctx, job)
}

func newJob(keyword string, scheduledAt time.Time) *domain.KeywordJob {
	return &domain.KeywordJob{
		ID:          uuid.NewString(),
		Keyword:     keyword,
		ScheduledAt: scheduledAt,
		Status:      domain.JobStatusPending,
		CreatedAt:   time.Now(),
	}
}

// isHeaderRow detects a first row like "keyword,scheduled_at"
func isHeaderRow(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "keyword")
}

// parseKeywordRow validates one CSV row and builds a pending job
func parseKeywordRow(record []string) (*domain.KeywordJob, error) {
	if len(record) < 2 {
		return nil, fmt.Errorf("expected 2 fields, got %d", len(record))
	}

	keyword := strings.TrimSpace(record[0])
	if keyword == "" {
		return nil, fmt.Errorf("empty keyword")
	}

	scheduledAt, err := parseTimestamp(strings.TrimSpace(record[1]))
	if err != nil {
		return nil, err
	}

	return newJob(keyword, scheduledAt), nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
