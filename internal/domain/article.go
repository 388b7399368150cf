package domain

import "time"

// JobStatus is the lifecycle state of a scheduled keyword job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusPublished JobStatus = "published"
	JobStatusFailed    JobStatus = "failed"
)

// KeywordJob represents one scheduled keyword waiting to become an article
type KeywordJob struct {
	ID          string    `json:"id"`
	Keyword     string    `json:"keyword"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Status      JobStatus `json:"status"`
	PostURL     string    `json:"postUrl,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Article is a generated piece of content ready for publishing
type Article struct {
	Title       string   `json:"title"`
	HTML        string   `json:"html"`
	ProductIDs  []string `json:"productIds"`
	FeaturedImg string   `json:"featuredImg,omitempty"`
}
