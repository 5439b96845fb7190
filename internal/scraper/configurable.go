package scraper

import (
	"context"
	"time"

	"materialworker/helpers"
	"materialworker/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// ConfigurableScraper extracts product records from one supplier's listing
// pages, driven entirely by its Selectors profile. Suppliers differ only in
// the data handed to the factory, never in code paths.
type ConfigurableScraper struct {
	BaseScraper
	Selectors Selectors

	// fetchFunc fetches and parses one listing page; tests swap it out
	fetchFunc func(ctx context.Context, url string) (*goquery.Document, error)
}

// NewConfigurableScraper creates a new configurable scraper
func NewConfigurableScraper(cfg ScraperConfig, cacheSvc cache.CacheService, metrics *Metrics) *ConfigurableScraper {
	s := &ConfigurableScraper{
		BaseScraper: newBaseScraper(cfg, cacheSvc, metrics),
		Selectors:   cfg.Selectors,
	}
	s.fetchFunc = s.fetchDocument
	return s
}

// ScrapeCategory fetches one category listing and extracts its product
// records. An unknown category or a page that could not be fetched yields
// an empty slice, not an error; partial pages yield partial results.
func (c *ConfigurableScraper) ScrapeCategory(ctx context.Context, category string) ([]ProductRecord, error) {
	path, ok := c.CategoryPath(category)
	if !ok {
		c.log.Warn().
			Str("category", category).
			Msg("Category not found in configuration")
		return []ProductRecord{}, nil
	}

	pageURL := c.ResolveURL(path)
	c.log.Info().
		Str("category", category).
		Str("url", pageURL).
		Msg("Scraping category")

	doc, err := c.fetchFunc(ctx, pageURL)
	if err != nil {
		c.log.Warn().
			Err(err).
			Str("category", category).
			Msg("No document for category")
		return []ProductRecord{}, nil
	}

	containers := doc.Find(c.Selectors.containerSelector())

	records := make([]ProductRecord, 0, containers.Length())
	maxProducts := c.Policy.MaxProductsPerCategory
	containers.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if maxProducts > 0 && i >= maxProducts {
			return false
		}
		record, ok := c.extractOne(s, category)
		if ok {
			records = append(records, record)
		}
		return true
	})

	c.metrics.AddRecords(c.Supplier, category, len(records))
	return records, nil
}

// extractOne maps a single product container to a record. Every field
// lookup is find-or-absent; a container that still breaks extraction is
// skipped without aborting the rest of the page.
func (c *ConfigurableScraper) extractOne(s *goquery.Selection, category string) (record ProductRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.metrics.IncContainerFailure(c.Supplier)
			c.log.Error().
				Str("category", category).
				Interface("panic", r).
				Msg("Recovered from container extraction failure")
			ok = false
		}
	}()

	// Name: first present heading-like element wins; a container with no
	// such element gets the literal fallback, never an absent name.
	name := "Unknown Product"
	for _, headingSel := range c.Selectors.Headings {
		if heading := s.Find(headingSel).First(); heading.Length() > 0 {
			name = NormalizeWhitespace(heading.Text())
			break
		}
	}

	var productURL, sku string
	if link := s.Find(c.Selectors.Link).First(); link.Length() > 0 {
		href, _ := link.Attr("href")
		productURL = c.ResolveURL(href)
		// The URL slug is the closest thing listings expose to a SKU
		sku = helpers.ProductRef(productURL)
	}

	priceText := "0"
	if priceSel := s.Find(c.Selectors.Price).First(); priceSel.Length() > 0 {
		priceText = NormalizeWhitespace(priceSel.Text())
	}
	price, currency := ExtractPrice(priceText)

	var brand string
	if brandSel := s.Find(c.Selectors.Brand).First(); brandSel.Length() > 0 {
		brand = NormalizeWhitespace(brandSel.Text())
	}

	var imageURL string
	if img := s.Find(c.Selectors.Image).First(); img.Length() > 0 {
		if src, exists := img.Attr("src"); exists {
			imageURL = c.ResolveURL(src)
		}
	}

	return ProductRecord{
		Name:       name,
		Category:   category,
		Price:      price,
		Currency:   currency,
		ProductURL: productURL,
		Supplier:   c.Name,
		Timestamp:  time.Now(),
		Brand:      brand,
		ImageURL:   imageURL,
		SKU:        sku,
	}, true
}
