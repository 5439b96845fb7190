package scraper

import (
	"context"
	"fmt"
	"time"

	"materialworker/logger"
)

// Aggregator runs a set of scrapers and merges their records into a single
// dataset. Iteration is sequential, suppliers outer and categories inner,
// so each supplier sees at most one in-flight request at a time.
type Aggregator struct {
	scrapers []Scraper
	byID     map[string]Scraper
	metrics  *Metrics
	log      *logger.Logger
}

func NewAggregator(scrapers []Scraper, metrics *Metrics) *Aggregator {
	byID := make(map[string]Scraper, len(scrapers))
	for _, s := range scrapers {
		byID[s.GetSupplier()] = s
	}
	return &Aggregator{
		scrapers: scrapers,
		byID:     byID,
		metrics:  metrics,
		log:      logger.ForAggregator(),
	}
}

// Suppliers returns the configured supplier identifiers in scrape order.
func (a *Aggregator) Suppliers() []string {
	ids := make([]string, 0, len(a.scrapers))
	for _, s := range a.scrapers {
		ids = append(ids, s.GetSupplier())
	}
	return ids
}

// SupplierName maps a supplier identifier to its display name.
func (a *Aggregator) SupplierName(id string) (string, bool) {
	s, ok := a.byID[id]
	if !ok {
		return "", false
	}
	return s.GetName(), true
}

// ScrapeAll scrapes the requested suppliers and categories and returns the
// accumulated records. An empty request means every configured supplier and
// the default category list. A failing supplier-category pair is logged and
// skipped; it never aborts the run. Cancelling the context returns the
// records accumulated so far.
func (a *Aggregator) ScrapeAll(ctx context.Context, req ScrapeRequest) []ProductRecord {
	start := time.Now()
	defer func() {
		a.metrics.ObserveRunDuration(time.Since(start))
	}()

	supplierIDs := req.Suppliers
	if len(supplierIDs) == 0 {
		supplierIDs = a.Suppliers()
	}
	categories := req.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}

	a.log.Info().
		Strs("suppliers", supplierIDs).
		Strs("categories", categories).
		Msg("Starting aggregation run")

	records := []ProductRecord{}
	for _, id := range supplierIDs {
		s, ok := a.byID[id]
		if !ok {
			a.log.Warn().Str("supplier", id).Msg("Unknown supplier requested")
			continue
		}

		supplierCount := 0
		for _, category := range categories {
			if ctx.Err() != nil {
				a.log.Warn().
					Int("records", len(records)).
					Msg("Aggregation canceled; returning partial results")
				return records
			}

			categoryRecords, err := a.scrapeCategory(ctx, s, category)
			if err != nil {
				a.log.Warn().
					Str("supplier", id).
					Str("category", category).
					Err(err).
					Msg("Category scrape failed")
				continue
			}
			records = append(records, categoryRecords...)
			supplierCount += len(categoryRecords)
		}

		a.log.Info().
			Str("supplier", id).
			Int("records", supplierCount).
			Msg("Supplier done")
	}

	a.log.Info().
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("Aggregation run complete")
	return records
}

// scrapeCategory shields the run from a panicking scraper; a panic is
// reported as an ordinary error for the caller to log and skip.
func (a *Aggregator) scrapeCategory(ctx context.Context, s Scraper, category string) (records []ProductRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("panic while scraping %s/%s: %v", s.GetSupplier(), category, r)
		}
	}()
	return s.ScrapeCategory(ctx, category)
}

// BuildResponse projects a record slice into the API response shape. The
// category is included only when the caller filtered by one.
func BuildResponse(records []ProductRecord, category string) Response {
	if records == nil {
		records = []ProductRecord{}
	}
	return Response{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Category:  category,
		Count:     len(records),
		Products:  records,
	}
}
