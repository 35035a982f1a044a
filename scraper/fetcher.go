package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-offers/config"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// Fetcher downloads pages one at a time. Every call gets its own collector
// and a transport without keep-alives, so no connection outlives a request.
type Fetcher struct {
	cfg       *config.Config
	host      string
	transport http.RoundTripper
	metrics   *Metrics

	requestCount int
	errorsByType map[string]int
}

// NewFetcher builds a fetcher restricted to the configured catalog host.
func NewFetcher(cfg *config.Config, metrics *Metrics) (*Fetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	return &Fetcher{
		cfg:  cfg,
		host: parsed.Hostname(),
		transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: cfg.Timeout,
			}).DialContext,
			DisableKeepAlives:   true,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		metrics:      metrics,
		errorsByType: make(map[string]int),
	}, nil
}

// Fetch issues a single GET for rawURL with params merged into its query and
// returns the response body. Error statuses are not treated as failures:
// their body is returned like any other.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, cookies, params map[string]string) (string, error) {
	target, err := withParams(rawURL, params)
	if err != nil {
		return "", f.fail(rawURL, err)
	}
	if err := ctx.Err(); err != nil {
		return "", f.fail(target, err)
	}

	var body []byte
	collector := f.newCollector(ctx)

	collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		if header := cookieHeader(cookies); header != "" {
			r.Headers.Set("Cookie", header)
		}
		f.requestCount++
		f.metrics.IncRequest("started")
		slog.Debug("fetching page",
			slog.String("url", r.URL.String()),
			slog.String("user_agent", r.Headers.Get("User-Agent")),
		)
	})

	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
		f.metrics.IncRequest("completed")
		if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
			f.metrics.ObserveDuration(time.Since(start))
		}
		if r.StatusCode >= http.StatusBadRequest {
			slog.Error("non-2xx response, parsing body as is",
				slog.Int("status", r.StatusCode),
				slog.String("url", r.Request.URL.String()),
			)
			return
		}
		slog.Debug("page fetched",
			slog.Int("status", r.StatusCode),
			slog.Int("bytes", len(r.Body)),
			slog.String("url", r.Request.URL.String()),
		)
	})

	if err := collector.Visit(target); err != nil {
		return "", f.fail(target, err)
	}
	return string(body), nil
}

// RequestCount returns the number of requests issued so far.
func (f *Fetcher) RequestCount() int {
	return f.requestCount
}

// ErrorsByType returns a copy of the fetch error counts by category.
func (f *Fetcher) ErrorsByType() map[string]int {
	out := make(map[string]int, len(f.errorsByType))
	for k, v := range f.errorsByType {
		out[k] = v
	}
	return out
}

func (f *Fetcher) newCollector(ctx context.Context) *colly.Collector {
	options := []colly.CollectorOption{
		colly.AllowedDomains(f.host),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.MaxBodySize(0),
	}
	if f.cfg.UserAgent != "" {
		options = append(options, colly.UserAgent(f.cfg.UserAgent))
	}

	collector := colly.NewCollector(options...)
	if f.cfg.UserAgent == "" {
		extensions.RandomUserAgent(collector)
	}
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobotsTxt
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(&contextTransport{ctx: ctx, next: f.transport})
	// cookies come from configuration only, never from previous responses
	collector.DisableCookies()
	return collector
}

// contextTransport binds every outgoing request to ctx, so canceling the run
// aborts a request that is waiting on the server.
type contextTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(req.WithContext(t.ctx))
}

func (f *Fetcher) fail(target string, err error) error {
	classified := classifyError(err)
	category := errorTypeLabel(classified)
	f.errorsByType[category]++
	f.metrics.IncError(category)
	slog.Error("request error",
		slog.String("url", target),
		slog.String("category", category),
		slog.Any("error", err),
	)
	return &FetchError{URL: target, Err: classified}
}

func withParams(rawURL string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	query := u.Query()
	for name, value := range params {
		query.Set(name, value)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func cookieHeader(cookies map[string]string) string {
	if len(cookies) == 0 {
		return ""
	}
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, (&http.Cookie{Name: name, Value: cookies[name]}).String())
	}
	return strings.Join(parts, "; ")
}
