package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-scrape-offers/config"
	"github.com/aluiziolira/go-scrape-offers/models"
	"github.com/aluiziolira/go-scrape-offers/parser"
	"github.com/aluiziolira/go-scrape-offers/pipeline"
)

// Scraper finds the cheapest offer of the cheapest model matching a keyword.
type Scraper struct {
	cfg     *config.Config
	fetcher *Fetcher
	layout  parser.Layout
	Metrics *Metrics

	modelCount    int
	offerCount    int
	skippedCount  int
	skippedByType map[string]int
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	metrics := NewMetrics()
	fetcher, err := NewFetcher(cfg, metrics)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		layout:  parser.DefaultLayout(),
		Metrics: metrics,

		skippedByType: make(map[string]int),
	}, nil
}

// Run searches for the configured keyword, follows the cheapest model to its
// offers and emits the cheapest offer through the pipeline. It returns
// ErrNoModels or ErrNoOffers when there is nothing to record; in that case
// nothing is written.
func (s *Scraper) Run(ctx context.Context, p *pipeline.Pipeline) (*models.ScrapeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result := &models.ScrapeResult{StartTime: time.Now()}

	page := s.NewPage(s.cfg.Keyword, p)
	model, ok, err := page.CheapestModel(ctx)
	if err != nil {
		return s.finish(result), fmt.Errorf("find cheapest model: %w", err)
	}
	if !ok {
		return s.finish(result), ErrNoModels
	}
	slog.Info("cheapest model selected",
		slog.String("url", model.Link),
		slog.Int("price", model.Price),
	)

	offer, ok, err := model.CheapestOffer(ctx)
	if err != nil {
		return s.finish(result), fmt.Errorf("find cheapest offer: %w", err)
	}
	if !ok {
		return s.finish(result), fmt.Errorf("%w: %s", ErrNoOffers, model.Link)
	}
	slog.Info("cheapest offer selected",
		slog.String("url", offer.Link),
		slog.Int("price", offer.Price),
	)

	record := models.Record{
		Keyword: s.cfg.Keyword,
		Price:   offer.Price,
		Link:    offer.Link,
	}
	if err := p.Emit(record); err != nil {
		return s.finish(result), err
	}
	result.Record = &record

	return s.finish(result), nil
}

// IsNoResult reports whether err is the designed "nothing to record" outcome.
func IsNoResult(err error) bool {
	return errors.Is(err, ErrNoModels) || errors.Is(err, ErrNoOffers)
}

func (s *Scraper) reportSkipped(kind, url string, errs []error) {
	for _, err := range errs {
		category := errorTypeLabel(err)
		s.skippedCount++
		s.skippedByType[category]++
		s.Metrics.IncSkipped(kind)
		s.Metrics.IncError(category)
		slog.Warn("skipping listing that does not match the page layout",
			slog.String("kind", kind),
			slog.String("url", url),
			slog.Any("error", err),
		)
	}
}

func (s *Scraper) finish(result *models.ScrapeResult) *models.ScrapeResult {
	result.EndTime = time.Now()
	result.RequestCount = s.fetcher.RequestCount()
	result.ModelCount = s.modelCount
	result.OfferCount = s.offerCount
	result.SkippedListings = s.skippedCount
	result.ErrorsByType = s.fetcher.ErrorsByType()
	for category, count := range s.skippedByType {
		result.ErrorsByType[category] += count
	}
	return result
}
