// Package models defines data structures for the scraper.
package models

import "time"

// Model is a product listing found on the search results page.
type Model struct {
	Link  string `json:"link"`
	Price int    `json:"price"`
}

// Offer is a single seller's offer on a model page.
type Offer struct {
	Link  string `json:"link"`
	Price int    `json:"price"`
}

// Record is the persisted result of a run.
type Record struct {
	Keyword string `csv:"keyword" json:"keyword"`
	Price   int    `csv:"price" json:"price"`
	Link    string `csv:"link" json:"link"`
}

// ScrapeResult holds the overall result of a scraping run
type ScrapeResult struct {
	Record          *Record
	StartTime       time.Time
	EndTime         time.Time
	RequestCount    int
	ModelCount      int
	OfferCount      int
	SkippedListings int
	ErrorsByType    map[string]int
}
