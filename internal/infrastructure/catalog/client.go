package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/linkscribe/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	maxSearchPages      = 5
	searchPageSize      = 10
	rawCandidateCap     = 50
	detailBatchSize     = 10
	defaultDesiredCount = 5

	// defaultRequestSpacing is the minimum gap between outbound catalog
	// calls; the provider throttles anything faster than ~1 req/sec.
	defaultRequestSpacing = 1100 * time.Millisecond

	defaultCacheTTL = 24 * time.Hour

	cacheKeyPrefix = "product:"
)

// ClientConfig tunes the catalog client
type ClientConfig struct {
	RequestSpacing time.Duration
	CacheTTL       time.Duration
	LinkBaseURL    string
	PartnerTag     string
	Marketplace    string
	Debug          bool
}

// Client orchestrates paged search, cached detail enrichment and the
// scoring/eligibility/sort pipeline against the catalog provider. A Client
// owns its own pacing limiter, so concurrent unrelated clients never block
// each other.
type Client struct {
	transport domain.CatalogTransport
	cache     domain.CacheRepository
	limiter   *rate.Limiter
	cfg       ClientConfig
}

// NewClient creates a catalog client over a signed transport and a detail
// cache
func NewClient(transport domain.CatalogTransport, cache domain.CacheRepository, cfg ClientConfig) *Client {
	if cfg.RequestSpacing <= 0 {
		cfg.RequestSpacing = defaultRequestSpacing
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	// Burst of 1: the first call of a sequence goes out immediately, every
	// later call waits out the spacing.
	limiter := rate.NewLimiter(rate.Every(cfg.RequestSpacing), 1)

	return &Client{
		transport: transport,
		cache:     cache,
		limiter:   limiter,
		cfg:       cfg,
	}
}

// SetDebug toggles verbose per-candidate logging
func (c *Client) SetDebug(enabled bool) {
	c.cfg.Debug = enabled
}

// SearchProducts returns up to desiredCount eligible, best-matching products
// for the keyword, ordered best-first. Fewer results than requested is a
// valid outcome; zero raw results and zero eligible results are distinct
// error conditions.
func (c *Client) SearchProducts(ctx context.Context, keyword string, desiredCount int) ([]domain.ProductDetail, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if desiredCount <= 0 {
		desiredCount = defaultDesiredCount
	}

	log.Printf("[CATALOG] SearchProducts: keyword=%q desired=%d", keyword, desiredCount)

	candidates, err := c.collectCandidates(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrNoCandidates, keyword)
	}

	ids := c.prefilterIDs(candidates, keyword)
	log.Printf("[CATALOG] %d raw candidates, %d after pre-filter", len(candidates), len(ids))
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrNoEligibleCandidates, keyword)
	}

	details, err := c.GetItemsDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	eligible := c.selectEligible(details, keyword)
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrNoEligibleCandidates, keyword)
	}

	SortCandidates(eligible)

	if len(eligible) > desiredCount {
		eligible = eligible[:desiredCount]
	}

	out := make([]domain.ProductDetail, len(eligible))
	for i, sc := range eligible {
		out[i] = sc.ProductDetail
	}

	log.Printf("[CATALOG] SearchProducts: returning %d of %d requested for %q",
		len(out), desiredCount, keyword)
	return out, nil
}

// collectCandidates pages through search results. Pages are sequential: the
// short-page stop rule needs one page's size before deciding on the next,
// and each page costs a pacing slot. A failed first page is a hard failure;
// later failures skip that page only.
func (c *Client) collectCandidates(ctx context.Context, keyword string) ([]domain.SearchCandidate, error) {
	var candidates []domain.SearchCandidate

	for page := 1; page <= maxSearchPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("search page 1: %w", err)
			}
			log.Printf("[CATALOG] pacing aborted on page %d: %v", page, err)
			break
		}

		payload := searchItemsPayload{
			Keywords:    keyword,
			ItemPage:    page,
			ItemCount:   searchPageSize,
			PartnerTag:  c.cfg.PartnerTag,
			Marketplace: c.cfg.Marketplace,
			Resources:   itemResources,
		}

		body, err := c.transport.Execute(ctx, opSearchItems, payload)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("search page 1: %w", err)
			}
			log.Printf("[CATALOG] search page %d failed, skipping: %v", page, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		var resp searchItemsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("search page 1: decoding response: %w", err)
			}
			log.Printf("[CATALOG] search page %d returned unparsable body, skipping: %v", page, err)
			continue
		}

		items := resp.SearchResult.Items
		for _, item := range items {
			candidates = append(candidates, mapItemToCandidate(item))
		}

		if c.cfg.Debug {
			log.Printf("[CATALOG] page %d: %d items (%d collected)", page, len(items), len(candidates))
		}

		// A short page signals the end of results
		if len(items) < searchPageSize {
			break
		}
		if len(candidates) >= rawCandidateCap {
			break
		}
	}

	return candidates, nil
}

// prefilterIDs dedupes candidates by id and applies the cheap filters that
// need no detail fetch: price present, available now, and not an obvious
// accessory (unless the keyword itself asks for one)
func (c *Client) prefilterIDs(candidates []domain.SearchCandidate, keyword string) []string {
	seen := make(map[string]bool, len(candidates))
	var ids []string

	for _, cand := range candidates {
		if cand.ID == "" || seen[cand.ID] {
			continue
		}
		seen[cand.ID] = true

		if !cand.HasPrice {
			c.debugExclude(cand.ID, "no price")
			continue
		}
		if !domain.AvailableNowTypes[cand.AvailabilityType] {
			c.debugExclude(cand.ID, "not available now")
			continue
		}
		if !IsMainProduct(cand.Title, keyword) {
			c.debugExclude(cand.ID, "accessory title")
			continue
		}

		ids = append(ids, cand.ID)
	}

	return ids
}

// GetItemsDetails resolves full detail records for the given ids, reading
// the cache first and fetching the rest in bulk batches. Output order is not
// significant and not every input id is guaranteed an entry: a failed batch
// is logged and skipped, its ids simply yield nothing.
func (c *Client) GetItemsDetails(ctx context.Context, ids []string) ([]domain.ProductDetail, error) {
	out := make([]domain.ProductDetail, 0, len(ids))

	var uncached []string
	for _, id := range ids {
		if detail, ok := c.cachedDetail(ctx, id); ok {
			out = append(out, detail)
		} else {
			uncached = append(uncached, id)
		}
	}

	if len(uncached) > 0 {
		log.Printf("[CATALOG] GetItemsDetails: %d cached, %d to fetch", len(out), len(uncached))
	}

	for start := 0; start < len(uncached); start += detailBatchSize {
		end := start + detailBatchSize
		if end > len(uncached) {
			end = len(uncached)
		}
		batch := uncached[start:end]

		if err := c.limiter.Wait(ctx); err != nil {
			if start == 0 && len(out) == 0 {
				return nil, fmt.Errorf("detail batch 1: %w", err)
			}
			log.Printf("[CATALOG] pacing aborted before detail batch: %v", err)
			break
		}

		payload := getItemsPayload{
			ItemIDs:     batch,
			PartnerTag:  c.cfg.PartnerTag,
			Marketplace: c.cfg.Marketplace,
			Resources:   itemResources,
		}

		body, err := c.transport.Execute(ctx, opGetItems, payload)
		if err != nil {
			// With no cached data and a failed first batch there is nothing
			// to work with at all; that one is escalated.
			if start == 0 && len(out) == 0 {
				return nil, fmt.Errorf("detail batch 1: %w", err)
			}
			log.Printf("[CATALOG] detail batch %d-%d failed, skipping: %v", start, end-1, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		var resp getItemsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			if start == 0 && len(out) == 0 {
				return nil, fmt.Errorf("detail batch 1: decoding response: %w", err)
			}
			log.Printf("[CATALOG] detail batch %d-%d returned unparsable body, skipping: %v", start, end-1, err)
			continue
		}

		for _, item := range resp.ItemsResult.Items {
			detail := mapItemToDetail(item, c.cfg.LinkBaseURL, c.cfg.PartnerTag)
			c.storeDetail(ctx, detail)
			out = append(out, detail)
		}
	}

	return out, nil
}

// selectEligible scores every detail record and keeps those passing the
// strict-AND eligibility filter, logging each rejection with its reasons
func (c *Client) selectEligible(details []domain.ProductDetail, keyword string) []domain.ScoredCandidate {
	var eligible []domain.ScoredCandidate

	for _, detail := range details {
		if detail.Title == "" {
			c.debugExclude(detail.ID, "missing title")
			continue
		}

		detail.Condition = strings.ToLower(detail.Condition)

		sc := domain.ScoredCandidate{
			ProductDetail: detail,
			Score:         ScoreProduct(detail.Title, keyword),
			IsMain:        IsMainProduct(detail.Title, keyword),
		}

		if reasons := EligibilityReasons(sc); len(reasons) > 0 {
			log.Printf("[CATALOG] excluding %s: %s", detail.ID, strings.Join(reasons, ", "))
			continue
		}

		eligible = append(eligible, sc)
	}

	return eligible
}

// cachedDetail reads one detail record from the cache
func (c *Client) cachedDetail(ctx context.Context, id string) (domain.ProductDetail, bool) {
	data, err := c.cache.Get(ctx, cacheKeyPrefix+id)
	if err != nil {
		return domain.ProductDetail{}, false
	}

	var detail domain.ProductDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		log.Printf("[CATALOG] corrupt cache entry for %s, refetching: %v", id, err)
		return domain.ProductDetail{}, false
	}

	return detail, true
}

// storeDetail upserts one detail record into the cache. A write failure is
// logged but never fails the lookup that produced the record.
func (c *Client) storeDetail(ctx context.Context, detail domain.ProductDetail) {
	data, err := json.Marshal(detail)
	if err != nil {
		log.Printf("[CATALOG] failed to encode %s for cache: %v", detail.ID, err)
		return
	}
	if err := c.cache.Set(ctx, cacheKeyPrefix+detail.ID, data, c.cfg.CacheTTL); err != nil {
		log.Printf("[CATALOG] failed to cache %s: %v", detail.ID, err)
	}
}

func (c *Client) debugExclude(id, reason string) {
	if c.cfg.Debug {
		log.Printf("[CATALOG] excluding %s: %s", id, reason)
	}
}
