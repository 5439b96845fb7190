package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func record(name, category, supplier string) ProductRecord {
	return ProductRecord{
		Name:     name,
		Category: category,
		Price:    10,
		Currency: DefaultCurrency,
		Supplier: supplier,
	}
}

func TestAggregator_ScrapeAllDefaults(t *testing.T) {
	leroy := &stubScraper{
		supplier: "leroy_merlin",
		name:     "Leroy Merlin",
		records: map[string][]ProductRecord{
			"tiles": {record("Carrelage gris", "tiles", "Leroy Merlin")},
			"paint": {record("Peinture blanche", "paint", "Leroy Merlin")},
		},
	}
	castorama := &stubScraper{
		supplier: "castorama",
		name:     "Castorama",
		records: map[string][]ProductRecord{
			"tiles": {record("Carrelage beige", "tiles", "Castorama")},
		},
	}

	agg := NewAggregator([]Scraper{leroy, castorama}, nil)
	records := agg.ScrapeAll(context.Background(), ScrapeRequest{})

	// Every supplier is asked for every default category, in order
	assert.Equal(t, DefaultCategories, leroy.calls)
	assert.Equal(t, DefaultCategories, castorama.calls)

	// Records accumulate supplier-outer, category-inner
	assert.Equal(t, 3, len(records))
	assert.Equal(t, "Carrelage gris", records[0].Name)
	assert.Equal(t, "Peinture blanche", records[1].Name)
	assert.Equal(t, "Carrelage beige", records[2].Name)
}

func TestAggregator_ScrapeAllFiltered(t *testing.T) {
	leroy := &stubScraper{
		supplier: "leroy_merlin",
		name:     "Leroy Merlin",
		records: map[string][]ProductRecord{
			"sinks": {record("Vasque à poser", "sinks", "Leroy Merlin")},
		},
	}
	castorama := &stubScraper{
		supplier: "castorama",
		name:     "Castorama",
	}

	agg := NewAggregator([]Scraper{leroy, castorama}, nil)
	records := agg.ScrapeAll(context.Background(), ScrapeRequest{
		Suppliers:  []string{"leroy_merlin"},
		Categories: []string{"sinks"},
	})

	assert.Equal(t, []string{"sinks"}, leroy.calls)
	assert.Empty(t, castorama.calls)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, "Vasque à poser", records[0].Name)
}

func TestAggregator_ScrapeAllUnknownSupplier(t *testing.T) {
	leroy := &stubScraper{
		supplier: "leroy_merlin",
		name:     "Leroy Merlin",
		records: map[string][]ProductRecord{
			"tiles": {record("Carrelage gris", "tiles", "Leroy Merlin")},
		},
	}

	agg := NewAggregator([]Scraper{leroy}, nil)
	records := agg.ScrapeAll(context.Background(), ScrapeRequest{
		Suppliers:  []string{"leroy_merlin", "amazon"},
		Categories: []string{"tiles"},
	})

	assert.Equal(t, 1, len(records))
	assert.Equal(t, "Carrelage gris", records[0].Name)
}

func TestAggregator_ScrapeAllIsolatesFailures(t *testing.T) {
	failing := &stubScraper{
		supplier: "leroy_merlin",
		name:     "Leroy Merlin",
		err:      &mockError{message: "connection refused"},
	}
	healthy := &stubScraper{
		supplier: "castorama",
		name:     "Castorama",
		records: map[string][]ProductRecord{
			"tiles": {record("Carrelage beige", "tiles", "Castorama")},
		},
	}

	agg := NewAggregator([]Scraper{failing, healthy}, nil)
	records := agg.ScrapeAll(context.Background(), ScrapeRequest{
		Categories: []string{"tiles", "paint"},
	})

	// The failing supplier is still asked for each category, and the
	// healthy one is unaffected
	assert.Equal(t, []string{"tiles", "paint"}, failing.calls)
	assert.Equal(t, []string{"tiles", "paint"}, healthy.calls)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, "Castorama", records[0].Supplier)
}

func TestAggregator_ScrapeAllIsolatesPanics(t *testing.T) {
	panicking := &stubScraper{
		supplier: "leroy_merlin",
		name:     "Leroy Merlin",
		panics:   true,
	}
	healthy := &stubScraper{
		supplier: "castorama",
		name:     "Castorama",
		records: map[string][]ProductRecord{
			"tiles": {record("Carrelage beige", "tiles", "Castorama")},
		},
	}

	agg := NewAggregator([]Scraper{panicking, healthy}, nil)
	records := agg.ScrapeAll(context.Background(), ScrapeRequest{
		Categories: []string{"tiles"},
	})

	assert.Equal(t, 1, len(records))
	assert.Equal(t, "Carrelage beige", records[0].Name)
}

func TestAggregator_ScrapeAllCanceled(t *testing.T) {
	leroy := &stubScraper{
		supplier: "leroy_merlin",
		name:     "Leroy Merlin",
	}

	agg := NewAggregator([]Scraper{leroy}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := agg.ScrapeAll(ctx, ScrapeRequest{})
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Empty(t, leroy.calls)
}

func TestAggregator_Suppliers(t *testing.T) {
	agg := NewAggregator([]Scraper{
		&stubScraper{supplier: "leroy_merlin", name: "Leroy Merlin"},
		&stubScraper{supplier: "castorama", name: "Castorama"},
	}, nil)

	assert.Equal(t, []string{"leroy_merlin", "castorama"}, agg.Suppliers())

	name, ok := agg.SupplierName("castorama")
	assert.True(t, ok)
	assert.Equal(t, "Castorama", name)

	_, ok = agg.SupplierName("amazon")
	assert.False(t, ok)
}

func TestBuildResponse(t *testing.T) {
	records := []ProductRecord{
		record("Carrelage gris", "tiles", "Leroy Merlin"),
		record("Carrelage beige", "tiles", "Castorama"),
	}

	resp := BuildResponse(records, "tiles")
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "tiles", resp.Category)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, records, resp.Products)
	assert.False(t, resp.Timestamp.IsZero())

	// Nil input still serializes as an empty array, not null
	empty := BuildResponse(nil, "")
	assert.Equal(t, "success", empty.Status)
	assert.Equal(t, "", empty.Category)
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Products)
}
