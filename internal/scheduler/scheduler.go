package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/linkscribe/backend/internal/domain"
	"github.com/linkscribe/backend/internal/usecase"
)

const defaultPollInterval = 5 * time.Minute

// ArticleRunner is the slice of the article pipeline the scheduler needs
type ArticleRunner interface {
	GenerateAndPublish(ctx context.Context, job domain.KeywordJob) (string, error)
}

// Scheduler polls the keyword queue and runs the article pipeline for
// each due job, one at a time
type Scheduler struct {
	keywords *usecase.KeywordService
	articles ArticleRunner
	interval time.Duration
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler. A non-positive interval falls back to the
// five-minute default.
func New(keywords *usecase.KeywordService, articles ArticleRunner, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		keywords: keywords,
		articles: articles,
		interval: interval,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins polling. The first poll runs immediately, then on every
// tick until Stop is called.
func (s *Scheduler) Start() {
	log.Printf("[SCHEDULER] starting with interval %v", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.runDueJobs()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runDueJobs()
			case <-s.ctx.Done():
				log.Println("[SCHEDULER] stopped")
				return
			}
		}
	}()
}

// Stop cancels the polling loop and waits for any in-flight poll to finish
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// runDueJobs processes every due job sequentially. One job's failure is
// recorded on the job and never blocks the rest of the batch.
func (s *Scheduler) runDueJobs() {
	due, err := s.keywords.DueJobs(s.ctx, s.now())
	if err != nil {
		log.Printf("[SCHEDULER] fetching due jobs failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	log.Printf("[SCHEDULER] %d job(s) due", len(due))
	for i := range due {
		if s.ctx.Err() != nil {
			return
		}
		s.processJob(due[i])
	}
}

func (s *Scheduler) processJob(job domain.KeywordJob) {
	if err := s.keywords.MarkRunning(s.ctx, &job); err != nil {
		log.Printf("[SCHEDULER] marking %q running failed: %v", job.Keyword, err)
		return
	}

	link, err := s.articles.GenerateAndPublish(s.ctx, job)
	if err != nil {
		log.Printf("[SCHEDULER] job %q failed: %v", job.Keyword, err)
		if markErr := s.keywords.MarkFailed(s.ctx, &job, err); markErr != nil {
			log.Printf("[SCHEDULER] marking %q failed errored: %v", job.Keyword, markErr)
		}
		return
	}

	if err := s.keywords.MarkPublished(s.ctx, &job, link); err != nil {
		log.Printf("[SCHEDULER] marking %q published failed: %v", job.Keyword, err)
	}
}
