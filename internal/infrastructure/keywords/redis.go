package keywords

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/linkscribe/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	jobKeyPrefix = "keyword:"
	indexKey     = "keywords:index"
)

// RedisRepository persists keyword jobs in Redis: one JSON value per job
// plus a set of ids for listing
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository connects to Redis and verifies the connection
func NewRedisRepository(ctx context.Context, redisURL string) (*RedisRepository, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisRepository{client: client}, nil
}

// Save upserts a job and records its id in the index set
func (r *RedisRepository) Save(ctx context.Context, job *domain.KeywordJob) error {
	job.UpdatedAt = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, jobKeyPrefix+job.ID, data, 0)
	pipe.SAdd(ctx, indexKey, job.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// Get returns one job by id
func (r *RedisRepository) Get(ctx context.Context, id string) (*domain.KeywordJob, error) {
	data, err := r.client.Get(ctx, jobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	var job domain.KeywordJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("corrupt job record %s: %w", id, err)
	}
	return &job, nil
}

// List returns all jobs ordered by scheduled time
func (r *RedisRepository) List(ctx context.Context) ([]domain.KeywordJob, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.KeywordJob, 0, len(ids))
	for _, id := range ids {
		job, err := r.Get(ctx, id)
		if errors.Is(err, domain.ErrJobNotFound) {
			// Index entry without a record; clean it up and move on
			log.Printf("[KEYWORDS] dropping stale index entry %s", id)
			r.client.SRem(ctx, indexKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *job)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

// Delete removes a job and its index entry
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, jobKeyPrefix+id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrJobNotFound
	}
	return r.client.SRem(ctx, indexKey, id).Err()
}

// DueJobs returns pending jobs whose scheduled time has passed, earliest
// first
func (r *RedisRepository) DueJobs(ctx context.Context, now time.Time) ([]domain.KeywordJob, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var due []domain.KeywordJob
	for _, job := range all {
		if job.Status == domain.JobStatusPending && !job.ScheduledAt.After(now) {
			due = append(due, job)
		}
	}
	return due, nil
}

// Close releases the underlying Redis connection
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
