package keywords

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/linkscribe/backend/internal/domain"
)

// MemoryRepository keeps keyword jobs in process memory. Suitable for
// development and tests; production uses the Redis repository.
type MemoryRepository struct {
	jobs  map[string]domain.KeywordJob
	mutex sync.RWMutex
}

// NewMemoryRepository creates an empty in-memory keyword repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		jobs: make(map[string]domain.KeywordJob),
	}
}

// Save upserts a job by id
func (r *MemoryRepository) Save(ctx context.Context, job *domain.KeywordJob) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	job.UpdatedAt = time.Now()
	r.jobs[job.ID] = *job
	return nil
}

// Get returns one job by id
func (r *MemoryRepository) Get(ctx context.Context, id string) (*domain.KeywordJob, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &job, nil
}

// List returns all jobs ordered by scheduled time
func (r *MemoryRepository) List(ctx context.Context) ([]domain.KeywordJob, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]domain.KeywordJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

// Delete removes a job by id
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return domain.ErrJobNotFound
	}
	delete(r.jobs, id)
	return nil
}

// DueJobs returns pending jobs whose scheduled time has passed, earliest
// first
func (r *MemoryRepository) DueJobs(ctx context.Context, now time.Time) ([]domain.KeywordJob, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var due []domain.KeywordJob
	for _, job := range r.jobs {
		if job.Status == domain.JobStatusPending && !job.ScheduledAt.After(now) {
			due = append(due, job)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledAt.Before(due[j].ScheduledAt)
	})
	return due, nil
}
