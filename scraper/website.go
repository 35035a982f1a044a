package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-offers/parser"
)

// Website is a page that is downloaded and parsed on first use. Both the
// markup and the document are kept for the lifetime of the value; a failed
// download is not remembered and is attempted again on the next call.
type Website struct {
	URL     string
	Cookies map[string]string
	Params  map[string]string

	fetcher *Fetcher
	markup  *string
	doc     *goquery.Document
}

// NewWebsite returns a lazily fetched page.
func (f *Fetcher) NewWebsite(rawURL string, cookies, params map[string]string) *Website {
	return &Website{
		URL:     rawURL,
		Cookies: cookies,
		Params:  params,
		fetcher: f,
	}
}

// Markup returns the page body, downloading it on the first call.
func (w *Website) Markup(ctx context.Context) (string, error) {
	if w.markup == nil {
		body, err := w.fetcher.Fetch(ctx, w.URL, w.Cookies, w.Params)
		if err != nil {
			return "", err
		}
		w.markup = &body
	}
	return *w.markup, nil
}

// Document returns the parsed page.
func (w *Website) Document(ctx context.Context) (*goquery.Document, error) {
	if w.doc == nil {
		markup, err := w.Markup(ctx)
		if err != nil {
			return nil, err
		}
		doc, err := parser.Parse(markup)
		if err != nil {
			return nil, err
		}
		w.doc = doc
	}
	return w.doc, nil
}
