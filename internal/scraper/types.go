package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"materialworker/config"
)

// ProductRecord represents one product listing extracted from a supplier page.
// It is immutable once produced; field names are the persistence contract.
type ProductRecord struct {
	Name            string    `json:"product_name"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	ProductURL      string    `json:"product_url"`
	Supplier        string    `json:"supplier"`
	Timestamp       time.Time `json:"timestamp"`
	Brand           string    `json:"brand,omitempty"`
	MeasurementUnit string    `json:"measurement_unit,omitempty"`
	PackSize        string    `json:"pack_size,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	Availability    string    `json:"availability,omitempty"`
	Description     string    `json:"description,omitempty"`
	SKU             string    `json:"sku,omitempty"`
}

// Scraper interface defines the contract for all supplier scrapers
type Scraper interface {
	// ScrapeCategory extracts the product records for one category
	ScrapeCategory(ctx context.Context, category string) ([]ProductRecord, error)

	// GetSupplier returns the supplier identifier, e.g. "leroy_merlin"
	GetSupplier() string

	// GetName returns the supplier display name, e.g. "Leroy Merlin"
	GetName() string
}

// DefaultCategories is the fixed category set scraped across all suppliers
var DefaultCategories = []string{"tiles", "sinks", "toilets", "paint", "vanities", "showers"}

// Selectors holds one supplier's extraction rules as data
type Selectors struct {
	// Containers lists class-name substrings that locate product cards
	Containers []string
	// Headings lists the name selectors tried in order; the first present
	// element wins
	Headings []string
	// Price, Brand, Link and Image locate the per-container field elements
	Price string
	Brand string
	Link  string
	Image string
}

// containerSelector builds the grouped selector matching any product card
func (s Selectors) containerSelector() string {
	parts := make([]string, 0, len(s.Containers))
	for _, pattern := range s.Containers {
		parts = append(parts, fmt.Sprintf("div[class*='%s']", pattern))
	}
	return strings.Join(parts, ", ")
}

// ScraperConfig contains configuration for one supplier scraper
type ScraperConfig struct {
	Supplier   string
	Name       string
	BaseURL    string
	Categories map[string]string
	CacheKey   string
	BlockTime  time.Duration
	Selectors  Selectors
	Policy     config.Policy
}

// ScrapeRequest selects the suppliers and categories for one aggregation
// run; empty slices mean the full configured set
type ScrapeRequest struct {
	Suppliers  []string `json:"suppliers,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Response is the API-shaped projection of an aggregation result
type Response struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Category  string          `json:"category,omitempty"`
	Supplier  string          `json:"supplier,omitempty"`
	Count     int             `json:"count"`
	Products  []ProductRecord `json:"products"`
}
