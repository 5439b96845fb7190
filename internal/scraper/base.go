package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"materialworker/config"
	"materialworker/helpers"
	"materialworker/logger"
	apperr "materialworker/pkg/errors"
	"materialworker/services/cache"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// BaseScraper provides the plumbing shared by all supplier scrapers: the
// paced, retrying fetch with its rate-limit block cache, URL resolution
// against the supplier base URL, and identity handling.
type BaseScraper struct {
	Supplier   string
	Name       string
	BaseURL    string
	Categories map[string]string
	CacheKey   string
	CacheSvc   cache.CacheService
	BlockTime  time.Duration
	Policy     config.Policy

	client   *http.Client
	identity helpers.Identity
	limiter  *rate.Limiter
	metrics  *Metrics
	log      *logger.Logger
}

func newBaseScraper(cfg ScraperConfig, cacheSvc cache.CacheService, metrics *Metrics) BaseScraper {
	return BaseScraper{
		Supplier:   cfg.Supplier,
		Name:       cfg.Name,
		BaseURL:    cfg.BaseURL,
		Categories: cfg.Categories,
		CacheKey:   cfg.CacheKey,
		CacheSvc:   cacheSvc,
		BlockTime:  cfg.BlockTime,
		Policy:     cfg.Policy,
		client:     helpers.NewClient(cfg.Policy.Timeout),
		// One identity per scraper instance; the supplier sees a stable
		// client across every request and retry.
		identity: helpers.RandomIdentity(),
		limiter:  rate.NewLimiter(rate.Every(cfg.Policy.Delay), 1),
		metrics:  metrics,
		log:      logger.ForScraper(cfg.Supplier),
	}
}

// GetSupplier returns the supplier identifier
func (c *BaseScraper) GetSupplier() string {
	return c.Supplier
}

// GetName returns the supplier display name
func (c *BaseScraper) GetName() string {
	return c.Name
}

// fetchDocument fetches a URL with bounded retries and parses it. Requests
// are paced by the per-instance limiter so one fetch (including its waits)
// completes before the next starts. All attempts failing is reported as an
// error; callers treat it as "no products for this page".
func (c *BaseScraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	// A supplier that rate-limited us recently stays untouched until the
	// block expires.
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			c.metrics.IncFetch(c.Supplier, "blocked")
			return nil, apperr.NewRateLimit(c.Supplier, c.BlockTime)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.Policy.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.NewNetwork(c.Supplier, "canceled while pacing request", err)
		}

		body, err := helpers.FetchWithIdentity(c.client, pageURL, c.identity)
		if err == nil {
			doc, parseErr := goquery.NewDocumentFromReader(body)
			if parseErr != nil {
				return nil, apperr.NewParsing(c.Supplier, "failed to parse document", parseErr)
			}
			c.metrics.IncFetch(c.Supplier, "success")
			return doc, nil
		}

		if errors.Is(err, helpers.ErrRateLimited) {
			c.markRateLimited()
			c.metrics.IncFetch(c.Supplier, "rate_limited")
			return nil, apperr.NewRateLimit(c.Supplier, c.BlockTime)
		}

		lastErr = err
		c.metrics.IncFetch(c.Supplier, "error")
		c.log.Warn().
			Err(err).
			Str("url", pageURL).
			Int("attempt", attempt+1).
			Int("max_retries", c.Policy.MaxRetries).
			Msg("Fetch attempt failed")

		if attempt < c.Policy.MaxRetries-1 {
			c.metrics.IncRetries()
			// Exponential backoff: base, 2x base, 4x base, ...
			backoff := c.Policy.RetryBackoff * time.Duration(1<<attempt)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperr.NewNetwork(c.Supplier, "canceled while backing off", ctx.Err())
			}
		}
	}

	c.log.Error().
		Err(lastErr).
		Str("url", pageURL).
		Int("max_retries", c.Policy.MaxRetries).
		Msg("Giving up after all fetch attempts failed")
	return nil, apperr.NewNetwork(c.Supplier, fmt.Sprintf("failed to fetch %s after %d attempts", pageURL, c.Policy.MaxRetries), lastErr)
}

// markRateLimited records the block so later fetches skip the supplier
// until it expires
func (c *BaseScraper) markRateLimited() {
	if c.CacheSvc == nil || c.CacheKey == "" {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(c.BlockTime/time.Second)))
	if err := c.CacheSvc.Set(c.CacheKey, value, c.BlockTime); err != nil {
		c.log.Warn().Err(err).Msg("Failed to set rate limit block")
	}
}

// ResolveURL resolves an href against the supplier base URL. Absolute URLs
// pass through; empty input stays empty.
func (c *BaseScraper) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// CategoryPath returns the configured listing path for a category
func (c *BaseScraper) CategoryPath(category string) (string, bool) {
	path, ok := c.Categories[category]
	return path, ok
}
