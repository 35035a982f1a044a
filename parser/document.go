package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Parse builds a queryable document from raw markup. The HTML parser is
// tolerant, so malformed markup still yields a document.
func Parse(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return doc, nil
}

// NextElement returns the element that follows sel in document order: its
// first child element, or else the next sibling of the closest ancestor
// (sel included) that has one. The result is empty at the end of the document.
func NextElement(sel *goquery.Selection) *goquery.Selection {
	sel = sel.First()
	if child := sel.Children().First(); child.Length() > 0 {
		return child
	}
	cur := sel
	for cur.Length() > 0 {
		if next := cur.Next(); next.Length() > 0 {
			return next
		}
		cur = cur.Parent()
	}
	return cur
}
