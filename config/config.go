package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Cache     CacheConfig
	Keywords  KeywordsConfig
	Generator GeneratorConfig
	WordPress WordPressConfig
	Scheduler SchedulerConfig
	Article   ArticleConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds product catalog API configuration
type CatalogConfig struct {
	Host           string        `mapstructure:"host"`
	Region         string        `mapstructure:"region"`
	AccessKey      string        `mapstructure:"access_key"`
	SecretKey      string        `mapstructure:"secret_key"`
	PartnerTag     string        `mapstructure:"partner_tag"`
	Marketplace    string        `mapstructure:"marketplace"`
	LinkBaseURL    string        `mapstructure:"link_base_url"`
	RequestSpacing time.Duration `mapstructure:"request_spacing"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// KeywordsConfig selects the keyword job store
type KeywordsConfig struct {
	Store    string `mapstructure:"store"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
}

// GeneratorConfig holds text-generation API configuration
type GeneratorConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// WordPressConfig holds CMS publishing credentials
type WordPressConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SchedulerConfig holds the keyword polling configuration
type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// ArticleConfig holds article assembly options
type ArticleConfig struct {
	ProductCount int    `mapstructure:"product_count"`
	SectionCount int    `mapstructure:"section_count"`
	PostStatus   string `mapstructure:"post_status"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/linkscribe/")

	// Environment variable settings
	v.SetEnvPrefix("LINKSCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a local .env file when present. Existing environment
// variables are never overridden.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Catalog defaults. Credentials default to empty so viper binds their
	// environment variables.
	v.SetDefault("catalog.host", "webservices.amazon.com")
	v.SetDefault("catalog.region", "us-east-1")
	v.SetDefault("catalog.marketplace", "www.amazon.com")
	v.SetDefault("catalog.link_base_url", "https://www.amazon.com")
	v.SetDefault("catalog.request_spacing", "1100ms")
	v.SetDefault("catalog.access_key", "")
	v.SetDefault("catalog.secret_key", "")
	v.SetDefault("catalog.partner_tag", "")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.redis_url", "")

	// Keyword store defaults
	v.SetDefault("keywords.store", "memory")
	v.SetDefault("keywords.redis_url", "")

	// Generator defaults
	v.SetDefault("generator.base_url", "https://api.openai.com")
	v.SetDefault("generator.model", "gpt-4o-mini")
	v.SetDefault("generator.api_key", "")

	// WordPress defaults
	v.SetDefault("wordpress.base_url", "")
	v.SetDefault("wordpress.username", "")
	v.SetDefault("wordpress.password", "")

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", "5m")

	// Article defaults
	v.SetDefault("article.product_count", 5)
	v.SetDefault("article.section_count", 3)
	v.SetDefault("article.post_status", "publish")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.AccessKey == "" {
		return fmt.Errorf("catalog access key is required (set LINKSCRIBE_CATALOG_ACCESS_KEY)")
	}
	if config.Catalog.SecretKey == "" {
		return fmt.Errorf("catalog secret key is required (set LINKSCRIBE_CATALOG_SECRET_KEY)")
	}
	if config.Catalog.PartnerTag == "" {
		return fmt.Errorf("catalog partner tag is required (set LINKSCRIBE_CATALOG_PARTNER_TAG)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}
	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Keywords.Store != "memory" && config.Keywords.Store != "redis" {
		return fmt.Errorf("keyword store must be 'memory' or 'redis', got: %s", config.Keywords.Store)
	}
	if config.Keywords.Store == "redis" && config.Keywords.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when keyword store is 'redis'")
	}

	if config.Article.PostStatus != "publish" && config.Article.PostStatus != "draft" {
		return fmt.Errorf("post status must be 'publish' or 'draft', got: %s", config.Article.PostStatus)
	}

	return nil
}
