package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations. Values are
// stored as raw bytes so the memory and Redis implementations behave
// identically.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogTransport sends one signed request to the catalog provider and
// returns the raw response body. Signing and HTTP mechanics live entirely
// behind this interface; the catalog client never sees them.
type CatalogTransport interface {
	Execute(ctx context.Context, operation string, payload any) ([]byte, error)
}

// ProductSearcher is what callers of the catalog client depend on
type ProductSearcher interface {
	SearchProducts(ctx context.Context, keyword string, desiredCount int) ([]ProductDetail, error)
	GetItemsDetails(ctx context.Context, ids []string) ([]ProductDetail, error)
}

// KeywordRepository persists scheduled keyword jobs
type KeywordRepository interface {
	Save(ctx context.Context, job *KeywordJob) error
	Get(ctx context.Context, id string) (*KeywordJob, error)
	List(ctx context.Context) ([]KeywordJob, error)
	Delete(ctx context.Context, id string) error
	DueJobs(ctx context.Context, now time.Time) ([]KeywordJob, error)
}

// ArticleGenerator drives the text-generation API
type ArticleGenerator interface {
	GenerateTitle(ctx context.Context, keyword string) (string, error)
	GenerateOutline(ctx context.Context, keyword string, count int) ([]string, error)
	GenerateSection(ctx context.Context, keyword, heading string) (string, error)
}

// Publisher pushes a finished article to the CMS backend
type Publisher interface {
	UploadMedia(ctx context.Context, filename string, data []byte, contentType string) (mediaID int, sourceURL string, err error)
	CreatePost(ctx context.Context, post Post) (link string, err error)
}

// Post is the CMS-side representation of an article
type Post struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Status        string `json:"status"`
	FeaturedMedia int    `json:"featured_media,omitempty"`
}
