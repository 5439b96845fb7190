// Package worker drives the periodic aggregation cycle: scrape everything,
// swap the snapshot, persist the dataset and publish the fresh records.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"materialworker/internal/scraper"
	"materialworker/logger"
	"materialworker/services/publisher"
	"materialworker/services/storage"
)

// Aggregator is the slice of the scraper aggregator the worker needs
type Aggregator interface {
	ScrapeAll(ctx context.Context, req scraper.ScrapeRequest) []scraper.ProductRecord
}

// Worker handles the scraping and publishing process
type Worker struct {
	ctx        context.Context
	aggregator Aggregator
	snapshot   *storage.Snapshot
	store      *storage.Store
	publisher  publisher.Publisher
	metrics    *scraper.Metrics
	interval   time.Duration
	log        *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	aggregator Aggregator,
	snapshot *storage.Snapshot,
	store *storage.Store,
	pub publisher.Publisher,
	metrics *scraper.Metrics,
	interval time.Duration,
) *Worker {
	return &Worker{
		ctx:        ctx,
		aggregator: aggregator,
		snapshot:   snapshot,
		store:      store,
		publisher:  pub,
		metrics:    metrics,
		interval:   interval,
		log:        logger.ForWorker(),
	}
}

// Start runs scrape cycles until the context is canceled
func (w *Worker) Start() {
	for {
		start := time.Now()
		w.runOnce()
		w.log.Info().Dur("elapsed", time.Since(start)).Msg("Scrape cycle finished")

		select {
		case <-time.After(w.interval):
		case <-w.ctx.Done():
			w.log.Info().Msg("Worker stopping")
			return
		}
	}
}

// runOnce performs one full aggregation cycle
func (w *Worker) runOnce() {
	records := w.aggregator.ScrapeAll(w.ctx, scraper.ScrapeRequest{})
	if w.ctx.Err() != nil {
		// A canceled run is partial; keep the previous dataset
		return
	}

	w.snapshot.Update(records)

	if err := w.store.Save(records); err != nil {
		w.log.Error().Err(err).Msg("Failed to save dataset")
	}

	w.publishRecords(records)

	if err := w.publisher.TrimStreams(); err != nil {
		w.log.Error().Err(err).Msg("Failed to trim streams")
	}
}

// publishRecords pushes each record to the stream, keyed by its supplier.
// A record that fails to publish is logged and skipped.
func (w *Worker) publishRecords(records []scraper.ProductRecord) {
	published := 0
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			w.log.Error().Err(err).Str("product", record.Name).Msg("Failed to marshal record")
			continue
		}

		if err := w.publisher.Publish(record.Supplier, data); err != nil {
			w.metrics.IncPublishFailure()
			w.log.Error().Err(err).Str("supplier", record.Supplier).Msg("Failed to publish record")
			continue
		}
		published++
	}

	w.log.Info().
		Int("published", published).
		Int("records", len(records)).
		Msg("Publish pass finished")
}
