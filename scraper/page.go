package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-scrape-offers/models"
	"github.com/aluiziolira/go-scrape-offers/parser"
	"github.com/aluiziolira/go-scrape-offers/pipeline"
)

// Page is the search results page for one keyword.
type Page struct {
	Keyword string

	scraper  *Scraper
	pipe     *pipeline.Pipeline
	site     *Website
	products []*Product
	listed   bool
	cheapest *Product
	resolved bool
}

// NewPage prepares the search page for keyword. Nothing is fetched until
// Products or CheapestModel is called.
func (s *Scraper) NewPage(keyword string, p *pipeline.Pipeline) *Page {
	params := make(map[string]string, len(s.cfg.Params)+1)
	for name, value := range s.cfg.Params {
		params[name] = value
	}
	params["keyword"] = keyword

	return &Page{
		Keyword: keyword,
		scraper: s,
		pipe:    p,
		site:    s.fetcher.NewWebsite(s.cfg.SearchURL(), s.cfg.Cookies, params),
	}
}

// Products returns the priced models of the page in document order. The
// list is built once and reused by every later call.
func (pg *Page) Products(ctx context.Context) ([]*Product, error) {
	if pg.listed {
		return pg.products, nil
	}

	doc, err := pg.site.Document(ctx)
	if err != nil {
		return nil, fmt.Errorf("search page: %w", err)
	}

	found, errs := parser.ExtractModels(doc, pg.scraper.layout, pg.scraper.cfg.Origin())
	pg.scraper.reportSkipped("model", pg.site.URL, errs)

	accepted := pg.pipe.Models(found)
	pg.products = make([]*Product, 0, len(accepted))
	for _, m := range accepted {
		pg.products = append(pg.products, pg.scraper.NewProduct(m, pg.pipe))
	}
	pg.listed = true

	pg.scraper.modelCount += len(pg.products)
	pg.scraper.Metrics.AddListings("model", len(pg.products))
	slog.Debug("search page parsed",
		slog.String("keyword", pg.Keyword),
		slog.Int("models", len(pg.products)),
		slog.Int("skipped", len(errs)),
	)
	return pg.products, nil
}

// CheapestModel returns the model with the lowest price. ok is false when the
// page lists no priced model.
func (pg *Page) CheapestModel(ctx context.Context) (*Product, bool, error) {
	if !pg.resolved {
		products, err := pg.Products(ctx)
		if err != nil {
			return nil, false, err
		}
		if best, found := pipeline.Cheapest(products, func(p *Product) int { return p.Price }); found {
			pg.cheapest = best
			pg.scraper.Metrics.SetCheapest("model", best.Price)
		}
		pg.resolved = true
	}
	return pg.cheapest, pg.cheapest != nil, nil
}

// Product is a model listed on the search page, with its own page of offers.
type Product struct {
	models.Model

	scraper  *Scraper
	pipe     *pipeline.Pipeline
	site     *Website
	cheapest *models.Offer
	resolved bool
}

// NewProduct wraps a search candidate. Its page is fetched on first use.
func (s *Scraper) NewProduct(m models.Model, p *pipeline.Pipeline) *Product {
	return &Product{
		Model:   m,
		scraper: s,
		pipe:    p,
		site:    s.fetcher.NewWebsite(m.Link, s.cfg.Cookies, nil),
	}
}

// CheapestOffer returns the lowest priced offer on the model page; ties go
// to the offer listed first. ok is false when the page has no usable offer.
// The result is computed once.
func (p *Product) CheapestOffer(ctx context.Context) (models.Offer, bool, error) {
	if !p.resolved {
		doc, err := p.site.Document(ctx)
		if err != nil {
			return models.Offer{}, false, fmt.Errorf("model page: %w", err)
		}

		extracted, errs := parser.ExtractOffers(doc, p.scraper.layout, p.scraper.cfg.Origin())
		p.scraper.reportSkipped("offer", p.Link, errs)

		offers := p.pipe.Offers(extracted)
		p.scraper.offerCount += len(offers)
		p.scraper.Metrics.AddListings("offer", len(offers))
		slog.Debug("model page parsed",
			slog.String("url", p.Link),
			slog.Int("offers", len(offers)),
			slog.Int("skipped", len(errs)),
		)

		if best, found := pipeline.Cheapest(offers, func(o models.Offer) int { return o.Price }); found {
			p.cheapest = &best
			p.scraper.Metrics.SetCheapest("offer", best.Price)
		}
		p.resolved = true
	}

	if p.cheapest == nil {
		return models.Offer{}, false, nil
	}
	return *p.cheapest, true, nil
}
