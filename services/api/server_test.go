package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"materialworker/internal/scraper"
	"materialworker/services/storage"

	"github.com/stretchr/testify/assert"
)

// stubAggregator implements the Aggregator interface for testing
type stubAggregator struct {
	records []scraper.ProductRecord
	order   []string
	names   map[string]string
	lastReq scraper.ScrapeRequest
	calls   int
}

var _ Aggregator = (*stubAggregator)(nil)

func (a *stubAggregator) ScrapeAll(ctx context.Context, req scraper.ScrapeRequest) []scraper.ProductRecord {
	a.calls++
	a.lastReq = req
	return a.records
}

func (a *stubAggregator) Suppliers() []string {
	return a.order
}

func (a *stubAggregator) SupplierName(id string) (string, bool) {
	name, ok := a.names[id]
	return name, ok
}

func testAPIRecords() []scraper.ProductRecord {
	ts := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	return []scraper.ProductRecord{
		{
			Name:      "Carrelage émaillé gris",
			Category:  "tiles",
			Price:     25.99,
			Currency:  "EUR",
			Supplier:  "Leroy Merlin",
			Timestamp: ts,
		},
		{
			Name:      "Carrelage beige 45x45",
			Category:  "tiles",
			Price:     18.50,
			Currency:  "EUR",
			Supplier:  "Castorama",
			Timestamp: ts,
		},
		{
			Name:      "Peinture blanche mate",
			Category:  "paint",
			Price:     54.90,
			Currency:  "EUR",
			Supplier:  "Castorama",
			Timestamp: ts,
		},
	}
}

func newTestServer(t *testing.T) (*Server, *stubAggregator) {
	t.Helper()
	agg := &stubAggregator{
		records: testAPIRecords(),
		order:   []string{"leroy_merlin", "castorama"},
		names: map[string]string{
			"leroy_merlin": "Leroy Merlin",
			"castorama":    "Castorama",
		},
	}
	snapshot := storage.NewSnapshot()
	snapshot.Update(testAPIRecords())
	store := storage.NewStore(filepath.Join(t.TempDir(), "materials.json"))
	return NewServer(":0", agg, snapshot, store, nil), agg
}

func doRequest(s *Server, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) scraper.Response {
	t.Helper()
	var resp scraper.Response
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	return resp
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp healthResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "materialworker", resp.Service)
}

func TestHandleMaterials(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, "GET", "/materials", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, 3, len(resp.Products))

	// Accents survive the trip through the API
	assert.Contains(t, rec.Body.String(), "Carrelage émaillé gris")
}

func TestHandleMaterialsCategoryFilter(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, "GET", "/materials?category=tiles", "")
	resp := decodeResponse(t, rec)

	assert.Equal(t, "tiles", resp.Category)
	assert.Equal(t, 2, resp.Count)
	for _, product := range resp.Products {
		assert.Equal(t, "tiles", product.Category)
	}
}

func TestHandleMaterialsCategoryPath(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, "GET", "/materials/paint", "")
	resp := decodeResponse(t, rec)

	assert.Equal(t, "paint", resp.Category)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Peinture blanche mate", resp.Products[0].Name)
}

func TestHandleMaterialsSupplierPath(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, "GET", "/materials/supplier/castorama", "")
	resp := decodeResponse(t, rec)

	assert.Equal(t, "Castorama", resp.Supplier)
	assert.Equal(t, 2, resp.Count)
	for _, product := range resp.Products {
		assert.Equal(t, "Castorama", product.Supplier)
	}
}

func TestHandleMaterialsCategoryWinsOverSupplier(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, "GET", "/materials?category=paint&supplier=leroy_merlin", "")
	resp := decodeResponse(t, rec)

	// Category takes precedence when both filters are present
	assert.Equal(t, "paint", resp.Category)
	assert.Equal(t, 1, resp.Count)
}

func TestHandleMaterialsUnknownCategory(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, "GET", "/materials/garden_furniture", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 0, resp.Count)

	// Empty filters still serialize an array, never null
	assert.Contains(t, rec.Body.String(), `"products":[]`)
}

func TestHandleMaterialsUnknownSupplier(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, "GET", "/materials/supplier/amazon", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, "amazon", resp.Supplier)
}

func TestHandleCategories(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, "GET", "/categories", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp categoriesResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, scraper.DefaultCategories, resp.Categories)
}

func TestHandleSuppliers(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, "GET", "/suppliers", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp suppliersResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, []string{"leroy_merlin", "castorama"}, resp.Suppliers)
}

func TestHandleScrape(t *testing.T) {
	server, agg := newTestServer(t)

	rec := doRequest(server, "POST", "/scrape", `{"categories":["tiles"],"suppliers":["castorama"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp scrapeResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Scraped 3 products", resp.Message)
	assert.Equal(t, 3, resp.Count)

	// The selection reached the aggregator
	assert.Equal(t, []string{"castorama"}, agg.lastReq.Suppliers)
	assert.Equal(t, []string{"tiles"}, agg.lastReq.Categories)

	// The run replaced the snapshot and the saved dataset
	assert.Equal(t, 3, server.snapshot.Count())
	loaded, err := server.store.Load()
	assert.NoError(t, err)
	assert.Equal(t, 3, len(loaded))
}

func TestHandleScrapeEmptyBody(t *testing.T) {
	server, agg := newTestServer(t)

	rec := doRequest(server, "POST", "/scrape", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// An empty body means the full default run
	assert.Equal(t, 1, agg.calls)
	assert.Empty(t, agg.lastReq.Suppliers)
	assert.Empty(t, agg.lastReq.Categories)
}

func TestHandleScrapeInvalidBody(t *testing.T) {
	server, agg := newTestServer(t)

	rec := doRequest(server, "POST", "/scrape", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, agg.calls)

	var resp errorResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
}

func TestHandleMetrics(t *testing.T) {
	agg := &stubAggregator{order: []string{"leroy_merlin"}}
	snapshot := storage.NewSnapshot()
	store := storage.NewStore(filepath.Join(t.TempDir(), "materials.json"))

	metrics := scraper.NewMetrics()
	metrics.IncFetch("leroy_merlin", "success")

	server := NewServer(":0", agg, snapshot, store, metrics)

	rec := doRequest(server, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "materialworker_fetches_total")
}
