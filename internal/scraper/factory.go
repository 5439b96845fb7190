package scraper

import (
	"time"

	"materialworker/config"
	"materialworker/logger"
	"materialworker/services/cache"
)

// rateLimitBlockTime is how long a supplier stays untouched after it
// answers with a rate-limiting status
const rateLimitBlockTime = 500 * time.Second

// supplierProfile binds a supplier identifier to its selector rules. The
// profiles are the only place supplier markup knowledge lives; everything
// else is shared code.
type supplierProfile struct {
	id        string
	selectors Selectors
}

var supplierProfiles = []supplierProfile{
	{
		// Leroy Merlin listing pages mark product cards with
		// "product-card" or "product-item" class fragments
		id: "leroy_merlin",
		selectors: Selectors{
			Containers: []string{"product-card", "product-item"},
			Headings:   []string{"h3", "h2", "[class*='title'], [class*='name']"},
			Price:      "[class*='price'], [class*='prix']",
			Brand:      "[class*='brand'], [class*='marque']",
			Link:       "a",
			Image:      "img",
		},
	},
	{
		// Castorama additionally uses bare "product" class fragments on
		// some listing layouts
		id: "castorama",
		selectors: Selectors{
			Containers: []string{"product-card", "product-item", "product"},
			Headings:   []string{"h3", "h2", "[class*='title'], [class*='name']"},
			Price:      "[class*='price'], [class*='prix']",
			Brand:      "[class*='brand'], [class*='marque']",
			Link:       "a",
			Image:      "img",
		},
	},
}

// CreateScrapers builds one scraper per configured supplier, in profile
// order. Suppliers present in the configuration but without a profile are
// skipped with a warning.
func CreateScrapers(cfg *config.ScrapeConfig, cacheSvc cache.CacheService, metrics *Metrics) []Scraper {
	scrapers := make([]Scraper, 0, len(supplierProfiles))

	for _, profile := range supplierProfiles {
		supplier, ok := cfg.Suppliers[profile.id]
		if !ok {
			continue
		}

		categories := make(map[string]string, len(supplier.Categories))
		for category, categoryCfg := range supplier.Categories {
			categories[category] = categoryCfg.URLPath
		}

		name := supplier.Name
		if name == "" {
			name = profile.id
		}

		scrapers = append(scrapers, NewConfigurableScraper(ScraperConfig{
			Supplier:   profile.id,
			Name:       name,
			BaseURL:    supplier.BaseURL,
			Categories: categories,
			CacheKey:   profile.id + "_rate_limited",
			BlockTime:  rateLimitBlockTime,
			Selectors:  profile.selectors,
			Policy:     cfg.Policy,
		}, cacheSvc, metrics))
	}

	for id := range cfg.Suppliers {
		if !hasProfile(id) {
			logger.Warn("No selector profile for configured supplier %s; skipping", id)
		}
	}

	return scrapers
}

func hasProfile(id string) bool {
	for _, profile := range supplierProfiles {
		if profile.id == id {
			return true
		}
	}
	return false
}
