package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/linkscribe/backend/config"
	httpDelivery "github.com/linkscribe/backend/internal/delivery/http"
	"github.com/linkscribe/backend/internal/domain"
	"github.com/linkscribe/backend/internal/infrastructure/cache"
	"github.com/linkscribe/backend/internal/infrastructure/catalog"
	"github.com/linkscribe/backend/internal/infrastructure/generator"
	"github.com/linkscribe/backend/internal/infrastructure/keywords"
	"github.com/linkscribe/backend/internal/infrastructure/wordpress"
	"github.com/linkscribe/backend/internal/scheduler"
	"github.com/linkscribe/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting LinkScribe Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// Initialize infrastructure dependencies
	cacheRepo := buildCache(cfg)

	signer, err := catalog.NewSigner(catalog.SignerConfig{
		Host:       cfg.Catalog.Host,
		Region:     cfg.Catalog.Region,
		AccessKey:  cfg.Catalog.AccessKey,
		SecretKey:  cfg.Catalog.SecretKey,
		PartnerTag: cfg.Catalog.PartnerTag,
	})
	if err != nil {
		log.Fatalf("Failed to initialize catalog signer: %v", err)
	}

	catalogClient := catalog.NewClient(signer, cacheRepo, catalog.ClientConfig{
		RequestSpacing: cfg.Catalog.RequestSpacing,
		CacheTTL:       cfg.Cache.TTL,
		LinkBaseURL:    cfg.Catalog.LinkBaseURL,
		PartnerTag:     cfg.Catalog.PartnerTag,
		Marketplace:    cfg.Catalog.Marketplace,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		catalogClient.SetDebug(true)
		log.Printf("Catalog client debug mode enabled")
	}

	generatorClient := generator.NewClient(cfg.Generator.APIKey, cfg.Generator.BaseURL, cfg.Generator.Model)
	if cfg.Generator.APIKey == "" {
		log.Printf("WARNING: generator API key not configured - article generation will fail")
	}

	publisher := wordpress.NewClient(cfg.WordPress.BaseURL, cfg.WordPress.Username, cfg.WordPress.Password)
	if cfg.WordPress.BaseURL == "" {
		log.Printf("WARNING: WordPress base URL not configured - publishing will fail")
	}

	keywordRepo := buildKeywordRepo(cfg)

	// Initialize usecase layer
	keywordService := usecase.NewKeywordService(keywordRepo)
	articleService := usecase.NewArticleService(
		catalogClient,
		generatorClient,
		publisher,
		usecase.ArticleServiceConfig{
			ProductCount: cfg.Article.ProductCount,
			SectionCount: cfg.Article.SectionCount,
			PostStatus:   cfg.Article.PostStatus,
		},
	)

	// Start the keyword poller
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(keywordService, articleService, cfg.Scheduler.Interval)
		sched.Start()
		defer sched.Stop()
	} else {
		log.Printf("Scheduler disabled - keyword jobs will not run")
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(keywordService, cfg)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func buildCache(cfg *config.Config) domain.CacheRepository {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(context.Background(), cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis cache: %v", err)
		}
		return redisCache
	}
	return cache.NewMemoryCache()
}

func buildKeywordRepo(cfg *config.Config) domain.KeywordRepository {
	if cfg.Keywords.Store == "redis" {
		repo, err := keywords.NewRedisRepository(context.Background(), cfg.Keywords.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis keyword store: %v", err)
		}
		return repo
	}
	return keywords.NewMemoryRepository()
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
