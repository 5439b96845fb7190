package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"materialworker/internal/scraper"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type categoriesResponse struct {
	Status     string   `json:"status"`
	Categories []string `json:"categories"`
}

type suppliersResponse struct {
	Status    string   `json:"status"`
	Suppliers []string `json:"suppliers"`
}

type scrapeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: "materialworker",
	})
}

// handleMaterials serves the snapshot, optionally filtered by the category
// or supplier query parameter. Category wins when both are given.
func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	supplier := r.URL.Query().Get("supplier")

	switch {
	case category != "":
		s.writeCategoryResponse(w, category)
	case supplier != "":
		s.writeSupplierResponse(w, supplier)
	default:
		s.writeJSON(w, http.StatusOK, scraper.BuildResponse(s.snapshot.Records(), ""))
	}
}

func (s *Server) handleMaterialsByCategory(w http.ResponseWriter, r *http.Request) {
	s.writeCategoryResponse(w, r.PathValue("category"))
}

func (s *Server) handleMaterialsBySupplier(w http.ResponseWriter, r *http.Request) {
	s.writeSupplierResponse(w, r.PathValue("supplier"))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, categoriesResponse{
		Status:     "success",
		Categories: scraper.DefaultCategories,
	})
}

func (s *Server) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, suppliersResponse{
		Status:    "success",
		Suppliers: s.aggregator.Suppliers(),
	})
}

// handleScrape runs a fresh aggregation for the requested selection and
// replaces the snapshot and the saved dataset with its result
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scraper.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	records := s.aggregator.ScrapeAll(r.Context(), req)
	if r.Context().Err() != nil {
		// The client went away mid-run; the partial result is discarded
		return
	}

	s.snapshot.Update(records)
	if err := s.store.Save(records); err != nil {
		s.log.Error().Err(err).Msg("Failed to save dataset")
		s.writeError(w, http.StatusInternalServerError, "failed to persist dataset")
		return
	}

	s.writeJSON(w, http.StatusOK, scrapeResponse{
		Status:  "success",
		Message: fmt.Sprintf("Scraped %d products", len(records)),
		Count:   len(records),
	})
}

func (s *Server) writeCategoryResponse(w http.ResponseWriter, category string) {
	filtered := filterByCategory(s.snapshot.Records(), category)
	s.writeJSON(w, http.StatusOK, scraper.BuildResponse(filtered, category))
}

func (s *Server) writeSupplierResponse(w http.ResponseWriter, supplier string) {
	// The path carries the supplier identifier; records carry the display
	// name. A display name passed directly still filters.
	name, ok := s.aggregator.SupplierName(supplier)
	if !ok {
		name = supplier
	}

	resp := scraper.BuildResponse(filterBySupplier(s.snapshot.Records(), name), "")
	resp.Supplier = name
	s.writeJSON(w, http.StatusOK, resp)
}

func filterByCategory(records []scraper.ProductRecord, category string) []scraper.ProductRecord {
	filtered := make([]scraper.ProductRecord, 0)
	for _, record := range records {
		if record.Category == category {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func filterBySupplier(records []scraper.ProductRecord, name string) []scraper.ProductRecord {
	filtered := make([]scraper.ProductRecord, 0)
	for _, record := range records {
		if record.Supplier == name {
			filtered = append(filtered, record)
		}
	}
	return filtered
}
