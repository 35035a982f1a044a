package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Token positions of the numeric part of a price text.
const (
	OfferPriceToken = 0 // "45990 руб."
	ModelPriceToken = 1 // "от 45990 руб."
)

// ParsePrice returns the integer held by the whitespace-delimited token at
// index token of text. Only that single token is read, so a price written
// with digit groups ("45 990") yields its first group.
func ParsePrice(text string, token int) (int, error) {
	fields := strings.Fields(text)
	if token < 0 || token >= len(fields) {
		return 0, fmt.Errorf("%w: price text %q has no token %d", ErrLayoutMismatch, text, token)
	}
	price, err := strconv.Atoi(fields[token])
	if err != nil {
		return 0, fmt.Errorf("%w: price token %q is not an integer", ErrLayoutMismatch, fields[token])
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: price %d is not positive", ErrLayoutMismatch, price)
	}
	return price, nil
}
