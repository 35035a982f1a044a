package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/aluiziolira/go-scrape-offers/config"
	"github.com/aluiziolira/go-scrape-offers/models"
	"github.com/aluiziolira/go-scrape-offers/parser"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrPipelineClosed is returned when Emit is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
)

// OutputWriter defines the interface for data output.
type OutputWriter interface {
	Write(record models.Record) error
	Close() error
	Validate() error
}

// Pipeline validates and de-duplicates scraped candidates before they are
// reduced, and hands the final record to the output writer.
type Pipeline struct {
	writer OutputWriter
	seen   *lru.Cache[string, struct{}]

	metrics metrics

	mu     sync.Mutex // guards closed
	closed bool
}

// NewPipeline builds a pipeline writing to writer.
func NewPipeline(writer OutputWriter, cfg *config.Config) (*Pipeline, error) {
	size := cfg.DedupeMaxSize
	if size <= 0 {
		size = config.DefaultConfig().DedupeMaxSize
	}
	seen, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("create dedupe cache: %w", err)
	}

	return &Pipeline{
		writer:  writer,
		seen:    seen,
		metrics: newMetrics(),
	}, nil
}

// Models drops invalid and repeated search candidates, keeping document order.
func (p *Pipeline) Models(in []models.Model) []models.Model {
	out := make([]models.Model, 0, len(in))
	for _, m := range in {
		if err := parser.ValidateModel(m); err != nil {
			p.metrics.addValidation("invalid_model")
			continue
		}
		if p.duplicate("model", m.Link, m.Price) {
			p.metrics.addValidation("duplicate_model")
			continue
		}
		p.metrics.incrementModels()
		out = append(out, m)
	}
	return out
}

// Offers drops invalid and repeated offers, keeping document order.
func (p *Pipeline) Offers(in []models.Offer) []models.Offer {
	out := make([]models.Offer, 0, len(in))
	for _, o := range in {
		if err := parser.ValidateOffer(o); err != nil {
			p.metrics.addValidation("invalid_offer")
			continue
		}
		if p.duplicate("offer", o.Link, o.Price) {
			p.metrics.addValidation("duplicate_offer")
			continue
		}
		p.metrics.incrementOffers()
		out = append(out, o)
	}
	return out
}

// Emit writes the final record.
func (p *Pipeline) Emit(record models.Record) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPipelineClosed
	}

	if err := p.writer.Write(record); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	p.metrics.incrementRecords()
	return nil
}

// Close closes the writer and prevents more records.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	return p.writer.Close()
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

// duplicate reports whether the exact (link, price) pair was seen before.
// Only exact repeats are dropped, so the cheapest candidate never changes.
func (p *Pipeline) duplicate(kind, link string, price int) bool {
	key := kind + "|" + link + "|" + strconv.Itoa(price)
	found, _ := p.seen.ContainsOrAdd(key, struct{}{})
	return found
}

type metrics struct {
	mu         sync.Mutex
	models     int64
	offers     int64
	records    int64
	validation map[string]int
}

func newMetrics() metrics {
	return metrics{
		validation: make(map[string]int),
	}
}

func (m *metrics) incrementModels() {
	m.mu.Lock()
	m.models++
	m.mu.Unlock()
}

func (m *metrics) incrementOffers() {
	m.mu.Lock()
	m.offers++
	m.mu.Unlock()
}

func (m *metrics) incrementRecords() {
	m.mu.Lock()
	m.records++
	m.mu.Unlock()
}

func (m *metrics) addValidation(kind string) {
	m.mu.Lock()
	m.validation[kind]++
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	copyValidation := make(map[string]int, len(m.validation))
	for k, v := range m.validation {
		copyValidation[k] = v
	}

	return map[string]interface{}{
		"accepted_models":   m.models,
		"accepted_offers":   m.offers,
		"written_records":   m.records,
		"validation_errors": copyValidation,
	}
}
