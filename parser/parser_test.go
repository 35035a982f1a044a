package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aluiziolira/go-scrape-offers/models"
)

const origin = "http://example.test"

func TestExtractQuoted(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "onclick value", input: `onclick="/catalog/item/123"`, want: "/catalog/item/123"},
		{name: "handler call", input: `goToShop("/click/42/", this)`, want: "/click/42/"},
		{name: "only first pair", input: `a "b" c "d"`, want: "b"},
		{name: "empty between quotes", input: `x=""`, want: ""},
		{name: "single quote", input: `onclick="/catalog`, wantErr: true},
		{name: "no quotes", input: "location.href", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractQuoted(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrLayoutMismatch) {
					t.Fatalf("ExtractQuoted(%q) error = %v, want layout mismatch", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractQuoted(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ExtractQuoted(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractAttrMissing(t *testing.T) {
	doc, err := Parse(`<a class="yel-but-2">Купить</a>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ExtractAttr(doc.Find(".yel-but-2"), "onmouseover"); !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("missing attribute error = %v", err)
	}
	if _, err := ExtractAttr(doc.Find(".absent"), "onmouseover"); !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("missing element error = %v", err)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		token   int
		want    int
		wantErr bool
	}{
		{name: "offer price", text: "45990 руб.", token: OfferPriceToken, want: 45990},
		{name: "offer price padded", text: "\n  45990 руб. ", token: OfferPriceToken, want: 45990},
		{name: "digit groups read first token only", text: "45 990 руб.", token: OfferPriceToken, want: 45},
		{name: "model price range", text: "от 31990 до 45990 руб.", token: ModelPriceToken, want: 31990},
		{name: "missing token", text: "45990", token: ModelPriceToken, wantErr: true},
		{name: "non numeric", text: "нет в наличии", token: OfferPriceToken, wantErr: true},
		{name: "zero", text: "0 руб.", token: OfferPriceToken, wantErr: true},
		{name: "empty", text: "", token: OfferPriceToken, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.text, tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrLayoutMismatch) {
					t.Fatalf("ParsePrice(%q) error = %v, want layout mismatch", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q) unexpected error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParsePrice(%q, %d) = %d, want %d", tt.text, tt.token, got, tt.want)
			}
		})
	}
}

func TestNextElement(t *testing.T) {
	doc, err := Parse(`<div id="a"><b id="child">x</b></div>` +
		`<img id="void"><p id="sibling">y</p>` +
		`<section><span id="last"></span></section><footer id="after"></footer>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tests := []struct {
		from string
		want string
	}{
		{from: "#a", want: "child"},
		{from: "#void", want: "sibling"},
		{from: "#last", want: "after"},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			got, _ := NextElement(doc.Find(tt.from)).Attr("id")
			if got != tt.want {
				t.Fatalf("NextElement(%s) = %q, want %q", tt.from, got, tt.want)
			}
		})
	}

	if next := NextElement(doc.Find("#after")); next.Length() != 0 {
		t.Fatalf("expected empty selection at end of document, got %d nodes", next.Length())
	}
	if next := NextElement(doc.Find("#absent")); next.Length() != 0 {
		t.Fatalf("expected empty selection for empty input")
	}
}

func modelBlock(href string, price string) string {
	var b strings.Builder
	b.WriteString(`<div class="model-short-block">`)
	fmt.Fprintf(&b, `<div class="list-img h"><a href="%s"><img src="/img.jpg"></a></div>`, href)
	if price != "" {
		fmt.Fprintf(&b, `<div id="model-price-range">%s</div>`, price)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func offerBlock(href string, price string) string {
	return fmt.Sprintf(`<div class="shop-108767 priceElem price-elem-js"><div class="where-buy-price">`+
		`<a class="price">%s</a><a class="yel-but-2" onmouseover='goToShop("%s")'>Купить</a>`+
		`</div></div>`, price, href)
}

func TestExtractModels(t *testing.T) {
	markup := "<html><body>" +
		modelBlock("/model/a", "от 2000 руб.") +
		modelBlock("/model/b", "") +
		modelBlock("/model/c", "от 1000 руб.") +
		modelBlock("/model/d", "от цена") +
		`<div class="model-short-block"><div id="model-price-range">от 500 руб.</div></div>` +
		"</body></html>"

	doc, err := Parse(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got, errs := ExtractModels(doc, DefaultLayout(), origin)
	want := []models.Model{
		{Link: origin + "/model/a", Price: 2000},
		{Link: origin + "/model/c", Price: 1000},
	}
	if len(got) != len(want) {
		t.Fatalf("models = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("model[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if len(errs) != 2 {
		t.Fatalf("errors = %v, want 2 malformed blocks", errs)
	}
	for _, err := range errs {
		var listingErr *ListingError
		if !errors.As(err, &listingErr) || listingErr.Kind != "model" {
			t.Fatalf("expected model listing error, got %v", err)
		}
		if !errors.Is(err, ErrLayoutMismatch) {
			t.Fatalf("expected layout mismatch, got %v", err)
		}
	}
}

func TestExtractModelsNoPricedBlocks(t *testing.T) {
	doc, err := Parse(modelBlock("/model/a", "") + modelBlock("/model/b", ""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, errs := ExtractModels(doc, DefaultLayout(), origin)
	if len(got) != 0 || len(errs) != 0 {
		t.Fatalf("got %v / %v, want nothing", got, errs)
	}
}

func TestExtractOffers(t *testing.T) {
	markup := offerBlock("/click/1/", "45990 руб.") +
		offerBlock("/click/2/", "41990 руб.") +
		`<div class="shop-108767 priceElem price-elem-js"><div class="where-buy-price">` +
		`<a class="price">39990 руб.</a><a class="yel-but-2" onmouseover="noquotes">Купить</a></div></div>` +
		`<div class="shop-108767 priceElem price-elem-js"><span>no price block</span></div>` +
		`<div class="priceElem price-elem-js">` + `other shop` + `</div>`

	doc, err := Parse(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got, errs := ExtractOffers(doc, DefaultLayout(), origin)
	want := []models.Offer{
		{Link: origin + "/click/1/", Price: 45990},
		{Link: origin + "/click/2/", Price: 41990},
	}
	if len(got) != len(want) {
		t.Fatalf("offers = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("offer[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(errs) != 2 {
		t.Fatalf("errors = %v, want 2", errs)
	}
	for _, err := range errs {
		if !errors.Is(err, ErrLayoutMismatch) {
			t.Fatalf("expected layout mismatch, got %v", err)
		}
	}
}

func TestValidateListings(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "valid model", err: ValidateModel(models.Model{Link: origin + "/m", Price: 1})},
		{name: "relative model link", err: ValidateModel(models.Model{Link: "/m", Price: 1}), wantErr: true},
		{name: "empty offer link", err: ValidateOffer(models.Offer{Price: 10}), wantErr: true},
		{name: "zero offer price", err: ValidateOffer(models.Offer{Link: origin + "/o"}), wantErr: true},
		{name: "valid offer", err: ValidateOffer(models.Offer{Link: "https://n-katalog.ru/o", Price: 10})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", tt.err, tt.wantErr)
			}
		})
	}
}
