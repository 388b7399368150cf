package usecase

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/linkscribe/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	markdownFenceRegex = regexp.MustCompile("(?s)```[a-z]*\n?|```")
	blankLinesRegex    = regexp.MustCompile(`\n{3,}`)
)

const (
	defaultProductCount  = 5
	defaultSectionCount  = 3
	defaultPostStatus    = "publish"
	featuredImageTimeout = 30 * time.Second
)

// ArticleServiceConfig holds configuration for the article pipeline
type ArticleServiceConfig struct {
	ProductCount int
	SectionCount int
	PostStatus   string
}

// ArticleService turns one keyword into a published article: product
// search, text generation, HTML assembly, publish
type ArticleService struct {
	searcher   domain.ProductSearcher
	generator  domain.ArticleGenerator
	publisher  domain.Publisher
	httpClient *http.Client // fetches the featured image
	cfg        ArticleServiceConfig
}

// NewArticleService creates the article pipeline with its collaborators
func NewArticleService(
	searcher domain.ProductSearcher,
	generator domain.ArticleGenerator,
	publisher domain.Publisher,
	cfg ArticleServiceConfig,
) *ArticleService {
	if cfg.ProductCount <= 0 {
		cfg.ProductCount = defaultProductCount
	}
	if cfg.SectionCount <= 0 {
		cfg.SectionCount = defaultSectionCount
	}
	if cfg.PostStatus == "" {
		cfg.PostStatus = defaultPostStatus
	}

	return &ArticleService{
		searcher:  searcher,
		generator: generator,
		publisher: publisher,
		httpClient: &http.Client{
			Timeout: featuredImageTimeout,
		},
		cfg: cfg,
	}
}

// GenerateAndPublish runs the full pipeline for one keyword job and returns
// the published post URL
func (s *ArticleService) GenerateAndPublish(ctx context.Context, job domain.KeywordJob) (string, error) {
	log.Printf("[ARTICLE] starting pipeline for %q", job.Keyword)

	products, err := s.searcher.SearchProducts(ctx, job.Keyword, s.cfg.ProductCount)
	if err != nil {
		return "", fmt.Errorf("product search for %q: %w", job.Keyword, err)
	}

	article, err := s.composeArticle(ctx, job.Keyword, products)
	if err != nil {
		return "", err
	}

	post := domain.Post{
		Title:   article.Title,
		Content: article.HTML,
		Status:  s.cfg.PostStatus,
	}

	if mediaID := s.uploadFeaturedImage(ctx, article.FeaturedImg); mediaID > 0 {
		post.FeaturedMedia = mediaID
	}

	link, err := s.publisher.CreatePost(ctx, post)
	if err != nil {
		return "", fmt.Errorf("publishing article for %q: %w", job.Keyword, err)
	}

	log.Printf("[ARTICLE] published %q -> %s", job.Keyword, link)
	return link, nil
}

// composeArticle drives the generator and assembles the final HTML
func (s *ArticleService) composeArticle(ctx context.Context, keyword string, products []domain.ProductDetail) (*domain.Article, error) {
	title, err := s.generator.GenerateTitle(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("generating title for %q: %w", keyword, err)
	}

	headings, err := s.generator.GenerateOutline(ctx, keyword, s.cfg.SectionCount)
	if err != nil {
		return nil, fmt.Errorf("generating outline for %q: %w", keyword, err)
	}
	if len(headings) > s.cfg.SectionCount {
		headings = headings[:s.cfg.SectionCount]
	}

	var b strings.Builder
	for _, heading := range headings {
		body, err := s.generator.GenerateSection(ctx, keyword, heading)
		if err != nil {
			return nil, fmt.Errorf("generating section %q: %w", heading, err)
		}
		b.WriteString("<h2>" + html.EscapeString(heading) + "</h2>\n")
		b.WriteString(body)
		b.WriteString("\n")
	}

	b.WriteString("<h2>" + html.EscapeString("Our Picks") + "</h2>\n")
	ids := make([]string, len(products))
	for i, product := range products {
		ids[i] = product.ID
		b.WriteString(productBoxHTML(product))
	}

	article := &domain.Article{
		Title:      title,
		HTML:       postProcessHTML(b.String()),
		ProductIDs: ids,
	}
	if len(products) > 0 {
		article.FeaturedImg = products[0].ImageURL
	}
	return article, nil
}

// productBoxHTML renders one recommended product with its affiliate link
func productBoxHTML(p domain.ProductDetail) string {
	var b strings.Builder
	b.WriteString(`<div class="product-box">` + "\n")
	if p.ImageURL != "" {
		b.WriteString(fmt.Sprintf(`<img src=%q alt=%q />`+"\n", p.ImageURL, p.Title))
	}
	b.WriteString("<h3>" + html.EscapeString(p.Title) + "</h3>\n")
	if p.Price != "" {
		b.WriteString(`<p class="price">` + html.EscapeString(p.Price) + "</p>\n")
	}
	if p.Description != "" {
		b.WriteString("<p>" + html.EscapeString(p.Description) + "</p>\n")
	}
	b.WriteString(fmt.Sprintf(`<a href=%q rel="nofollow sponsored">View Product</a>`+"\n", p.AffiliateLink))
	b.WriteString("</div>\n")
	return b.String()
}

// postProcessHTML strips generator artifacts: markdown code fences and runs
// of blank lines
func postProcessHTML(s string) string {
	s = markdownFenceRegex.ReplaceAllString(s, "")
	s = blankLinesRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// uploadFeaturedImage fetches the image and uploads it to the CMS. Returns
// 0 when anything fails; a missing featured image never blocks the publish.
func (s *ArticleService) uploadFeaturedImage(ctx context.Context, imageURL string) int {
	if imageURL == "" {
		return 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		log.Printf("[ARTICLE] bad image URL %q: %v", imageURL, err)
		return 0
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[ARTICLE] fetching image %q failed: %v", imageURL, err)
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ARTICLE] image fetch %q returned status %d", imageURL, resp.StatusCode)
		return 0
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[ARTICLE] reading image %q failed: %v", imageURL, err)
		return 0
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	filename := path.Base(imageURL)
	if filename == "." || filename == "/" {
		filename = "featured.jpg"
	}

	mediaID, _, err := s.publisher.UploadMedia(ctx, filename, data, contentType)
	if err != nil {
		log.Printf("[ARTICLE] featured image upload failed: %v", err)
		return 0
	}
	return mediaID
}
