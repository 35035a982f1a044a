package parser

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-offers/models"
)

// Layout lists the selectors that locate listings on catalog pages.
type Layout struct {
	ModelBlock string
	ModelImage string
	PriceRange string
	OfferBlock string
	WhereBuy   string
	BuyButton  string
	BuyHandler string
	ModelPrice int
	OfferPrice int
}

// DefaultLayout matches the n-katalog.ru markup.
func DefaultLayout() Layout {
	return Layout{
		ModelBlock: ".model-short-block",
		ModelImage: ".list-img.h",
		PriceRange: "#model-price-range",
		OfferBlock: ".shop-108767.priceElem.price-elem-js",
		WhereBuy:   ".where-buy-price",
		BuyButton:  ".yel-but-2",
		BuyHandler: "onmouseover",
		ModelPrice: ModelPriceToken,
		OfferPrice: OfferPriceToken,
	}
}

// ExtractModels returns the priced model blocks of a search results page in
// document order. Blocks without a price range have no offers and are skipped
// silently; blocks that do not match the layout are skipped and reported.
func ExtractModels(doc *goquery.Document, layout Layout, origin string) ([]models.Model, []error) {
	var (
		out  []models.Model
		errs []error
	)

	doc.Find(layout.ModelBlock).Each(func(i int, block *goquery.Selection) {
		priceRange := block.Find(layout.PriceRange).First()
		if priceRange.Length() == 0 {
			return
		}

		model, err := extractModel(block, priceRange, layout, origin)
		if err != nil {
			errs = append(errs, &ListingError{Kind: "model", Index: i, Err: err})
			return
		}
		out = append(out, model)
	})

	return out, errs
}

func extractModel(block, priceRange *goquery.Selection, layout Layout, origin string) (models.Model, error) {
	image := block.Find(layout.ModelImage).First()
	if image.Length() == 0 {
		return models.Model{}, fmt.Errorf("%w: model block has no %s", ErrLayoutMismatch, layout.ModelImage)
	}
	href, ok := NextElement(image).Attr("href")
	if !ok || href == "" {
		return models.Model{}, fmt.Errorf("%w: element after %s has no href", ErrLayoutMismatch, layout.ModelImage)
	}

	price, err := ParsePrice(priceRange.Text(), layout.ModelPrice)
	if err != nil {
		return models.Model{}, err
	}

	return models.Model{Link: origin + href, Price: price}, nil
}

// ExtractOffers returns the seller offers of a model page in document order.
// Offer blocks that do not match the layout are skipped and reported.
func ExtractOffers(doc *goquery.Document, layout Layout, origin string) ([]models.Offer, []error) {
	var (
		out  []models.Offer
		errs []error
	)

	doc.Find(layout.OfferBlock).Each(func(i int, block *goquery.Selection) {
		offer, err := extractOffer(block, layout, origin)
		if err != nil {
			errs = append(errs, &ListingError{Kind: "offer", Index: i, Err: err})
			return
		}
		out = append(out, offer)
	})

	return out, errs
}

func extractOffer(block *goquery.Selection, layout Layout, origin string) (models.Offer, error) {
	info := block.Find(layout.WhereBuy).First()
	if info.Length() == 0 {
		return models.Offer{}, fmt.Errorf("%w: offer block has no %s", ErrLayoutMismatch, layout.WhereBuy)
	}

	href, err := ExtractAttr(info.Find(layout.BuyButton), layout.BuyHandler)
	if err != nil {
		return models.Offer{}, err
	}

	price, err := ParsePrice(NextElement(info).Text(), layout.OfferPrice)
	if err != nil {
		return models.Offer{}, err
	}

	return models.Offer{Link: origin + href, Price: price}, nil
}
