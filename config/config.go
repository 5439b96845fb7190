package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from the environment
type Config struct {
	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int64

	// Memcache configuration
	MemcacheAddr string

	// Scraper configuration
	ScrapeInterval   time.Duration
	ScrapeConfigPath string

	// API configuration
	APIAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.ParseInt(getEnv("REDIS_STREAM_MAX_LENGTH", "500"), 10, 64)
	scrapeInterval, _ := strconv.Atoi(getEnv("SCRAPE_INTERVAL_SECONDS", "3600"))

	return Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "materials"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		ScrapeInterval:       time.Duration(scrapeInterval) * time.Second,
		ScrapeConfigPath:     getEnv("SCRAPER_CONFIG_PATH", "config/suppliers.yaml"),
		APIAddr:              getEnv("API_ADDR", ":8080"),
		Environment:          getEnv("MATERIALWORKER_ENVIRONMENT", "development"),
	}
}

// Validate checks that the loaded configuration is usable
func (c *Config) Validate() error {
	if c.RedisAddr == "" {
		return fmt.Errorf("redis address must not be empty")
	}
	if c.MemcacheAddr == "" {
		return fmt.Errorf("memcache address must not be empty")
	}
	if c.RedisStreamCount < 1 {
		return fmt.Errorf("redis stream count must be at least 1, got %d", c.RedisStreamCount)
	}
	if c.RedisStreamMaxLength < 1 {
		return fmt.Errorf("redis stream max length must be at least 1, got %d", c.RedisStreamMaxLength)
	}
	if c.ScrapeInterval <= 0 {
		return fmt.Errorf("scrape interval must be positive, got %v", c.ScrapeInterval)
	}
	if c.ScrapeConfigPath == "" {
		return fmt.Errorf("scraper config path must not be empty")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// SupplierConfig holds one supplier's base URL and category path mapping
type SupplierConfig struct {
	Name       string                    `yaml:"name"`
	BaseURL    string                    `yaml:"base_url"`
	Categories map[string]CategoryConfig `yaml:"categories"`
}

// CategoryConfig holds the relative listing path for one category
type CategoryConfig struct {
	URLPath string `yaml:"url_path"`
}

// OutputConfig holds the persistence settings
type OutputConfig struct {
	Path string `yaml:"path"`
}

// Policy holds the scraping behavior knobs in runtime units
type Policy struct {
	MaxRetries             int
	Timeout                time.Duration
	Delay                  time.Duration
	RetryBackoff           time.Duration
	MaxProductsPerCategory int
}

// ScrapeConfig is the supplier configuration file, loaded once at startup
type ScrapeConfig struct {
	Suppliers map[string]SupplierConfig
	Policy    Policy
	Output    OutputConfig
}

// scrapeFile mirrors the YAML layout; durations are plain seconds there
type scrapeFile struct {
	Suppliers map[string]SupplierConfig `yaml:"suppliers"`
	Scraping  struct {
		MaxRetries             int  `yaml:"max_retries"`
		Timeout                int  `yaml:"timeout"`
		DelayBetweenRequests   *int `yaml:"delay_between_requests"`
		RetryBackoff           int  `yaml:"retry_backoff"`
		MaxProductsPerCategory int  `yaml:"max_products_per_category"`
	} `yaml:"scraping"`
	Output OutputConfig `yaml:"output"`
}

// LoadScrapeConfig loads and validates the supplier configuration file
func LoadScrapeConfig(path string) (*ScrapeConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scraper config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	raw := &scrapeFile{}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("parse scraper config: %w", err)
	}

	if len(raw.Suppliers) == 0 {
		return nil, fmt.Errorf("scraper config %s declares no suppliers", path)
	}
	for id, supplier := range raw.Suppliers {
		if supplier.BaseURL == "" {
			return nil, fmt.Errorf("supplier %s has no base_url", id)
		}
	}

	// An absent delay falls back to the polite default; an explicit 0 stays 0.
	delay := 2 * time.Second
	if raw.Scraping.DelayBetweenRequests != nil {
		delay = time.Duration(*raw.Scraping.DelayBetweenRequests) * time.Second
		if delay < 0 {
			delay = 0
		}
	}

	cfg := &ScrapeConfig{
		Suppliers: raw.Suppliers,
		Policy: Policy{
			MaxRetries:             raw.Scraping.MaxRetries,
			Timeout:                time.Duration(raw.Scraping.Timeout) * time.Second,
			Delay:                  delay,
			RetryBackoff:           time.Duration(raw.Scraping.RetryBackoff) * time.Second,
			MaxProductsPerCategory: raw.Scraping.MaxProductsPerCategory,
		},
		Output: raw.Output,
	}
	cfg.Policy.applyDefaults()
	if cfg.Output.Path == "" {
		cfg.Output.Path = "data/materials.json"
	}

	return cfg, nil
}

func (p *Policy) applyDefaults() {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 3
	}
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}
	if p.RetryBackoff <= 0 {
		p.RetryBackoff = time.Second
	}
	if p.MaxProductsPerCategory <= 0 {
		p.MaxProductsPerCategory = 50
	}
}
