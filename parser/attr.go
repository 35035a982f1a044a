package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const quote = `"`

// ExtractQuoted returns the text strictly between the first and second double
// quote of raw. Handler attributes such as onmouseover embed the link this way.
func ExtractQuoted(raw string) (string, error) {
	start := strings.Index(raw, quote)
	if start < 0 {
		return "", fmt.Errorf("%w: no opening quote in %q", ErrLayoutMismatch, raw)
	}
	start += len(quote)
	end := strings.Index(raw[start:], quote)
	if end < 0 {
		return "", fmt.Errorf("%w: no closing quote in %q", ErrLayoutMismatch, raw)
	}
	return raw[start : start+end], nil
}

// ExtractAttr reads attribute name from the first element of sel and returns
// its quoted part.
func ExtractAttr(sel *goquery.Selection, name string) (string, error) {
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: no element to read %q from", ErrLayoutMismatch, name)
	}
	raw, ok := sel.First().Attr(name)
	if !ok {
		return "", fmt.Errorf("%w: missing attribute %q", ErrLayoutMismatch, name)
	}
	return ExtractQuoted(raw)
}
