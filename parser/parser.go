// Package parser extracts models and offers from catalog markup.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-scrape-offers/models"
)

// ErrLayoutMismatch reports markup that does not have the structure the
// extractors expect.
var ErrLayoutMismatch = errors.New("page layout mismatch")

// ListingError describes a single listing block that could not be extracted.
type ListingError struct {
	Kind  string // "model" or "offer"
	Index int
	Err   error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("%s #%d: %v", e.Kind, e.Index, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

// ValidateModel ensures a search candidate carries a link and a positive price.
func ValidateModel(m models.Model) error {
	return validateListing("model", m.Link, m.Price)
}

// ValidateOffer ensures an offer carries a link and a positive price.
func ValidateOffer(o models.Offer) error {
	return validateListing("offer", o.Link, o.Price)
}

func validateListing(kind, link string, price int) error {
	if strings.TrimSpace(link) == "" {
		return fmt.Errorf("%s missing link", kind)
	}
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return fmt.Errorf("%s link %q is not absolute", kind, link)
	}
	if price <= 0 {
		return fmt.Errorf("%s price %d is not positive for %s", kind, price, link)
	}
	return nil
}
