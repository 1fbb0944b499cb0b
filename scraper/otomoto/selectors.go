// Package otomoto scrapes car listings from otomoto.pl style classifieds
// pages: result pages yield detail links, detail pages yield attribute maps.
package otomoto

// Selectors holds the CSS selectors and synthesized attribute names the
// scraper relies on. Site markup changes only need a new Selectors value.
type Selectors struct {
	// Result listing: one candidate link per heading that contains an anchor.
	ResultHeading string

	// Detail page parameter list. Label comes from ParamLabel, value from the
	// anchor inside ParamValue when present, else ParamValue's own text.
	ParamItem      string
	ParamLabel     string
	ParamValue     string
	ParamValueLink string

	Price     string
	PriceUnit string
	Location  string

	PriceKey    string
	LocationKey string
	URLKey      string
}

// DefaultSelectors matches the otomoto.pl markup.
func DefaultSelectors() Selectors {
	return Selectors{
		ResultHeading: "h2",

		ParamItem:      "li.offer-params__item",
		ParamLabel:     "span",
		ParamValue:     "div",
		ParamValueLink: "a",

		Price:     "span.offer-price__number",
		PriceUnit: "PLN",
		Location:  "a.seller-card__links__link__cta",

		PriceKey:    "Cena",
		LocationKey: "Lokalizacja",
		URLKey:      "Url",
	}
}
