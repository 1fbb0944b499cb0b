package otomoto

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"classifieds-scraper/models"
	"classifieds-scraper/scraper"
	"classifieds-scraper/utils"
)

// Reasons a detail page has no special fields.
var (
	ErrNoPrice    = errors.New("price element not found")
	ErrBadPrice   = errors.New("price is not an integer")
	ErrNoLocation = errors.New("location element not found")
)

// SpecialFields are the price and location read from a detail page.
type SpecialFields struct {
	Price    int64
	Location string
}

// DetailExtractor turns a detail page into a Record.
type DetailExtractor struct {
	fetcher scraper.Fetcher
	sel     Selectors
	logger  *utils.Logger
}

// NewDetailExtractor creates a DetailExtractor.
func NewDetailExtractor(fetcher scraper.Fetcher, sel Selectors, logger *utils.Logger) *DetailExtractor {
	return &DetailExtractor{fetcher: fetcher, sel: sel, logger: logger}
}

// Extract fetches link once and extracts its record. On a fetch or parse
// error the returned Extraction still carries a record holding only the
// source link.
func (e *DetailExtractor) Extract(ctx context.Context, link string) (models.Extraction, error) {
	body, err := e.fetcher.Fetch(ctx, link)
	if err != nil {
		return models.Extraction{Record: models.Record{e.sel.URLKey: models.Text(link)}}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return models.Extraction{Record: models.Record{e.sel.URLKey: models.Text(link)}},
			fmt.Errorf("detail: parse %s: %w", link, err)
	}

	ex := e.parse(doc, link)
	e.logger.Debug("[detail] %s: %d attributes", link, len(ex.Record))
	return ex, nil
}

func (e *DetailExtractor) parse(doc *goquery.Document, link string) models.Extraction {
	rec := e.extractParams(doc)

	special, err := e.extractSpecial(doc)
	if err == nil {
		rec[e.sel.PriceKey] = models.Int(special.Price)
		rec[e.sel.LocationKey] = models.Text(special.Location)
	}
	rec[e.sel.URLKey] = models.Text(link)

	return models.Extraction{Record: rec, SpecialErr: err}
}

// extractParams reads the (label, value) parameter list. Later duplicates of
// a label overwrite earlier ones.
func (e *DetailExtractor) extractParams(doc *goquery.Document) models.Record {
	rec := make(models.Record)
	doc.Find(e.sel.ParamItem).Each(func(_ int, item *goquery.Selection) {
		label := item.Find(e.sel.ParamLabel).First()
		value := item.Find(e.sel.ParamValue).First()
		if label.Length() == 0 || value.Length() == 0 {
			return
		}

		text := value.Text()
		if a := value.Find(e.sel.ParamValueLink).First(); a.Length() > 0 {
			text = a.Text()
		}
		rec[strings.TrimSpace(label.Text())] = models.Text(strings.TrimSpace(text))
	})
	return rec
}

// extractSpecial reads price and location together; either both succeed or
// the reason for the failure is returned.
func (e *DetailExtractor) extractSpecial(doc *goquery.Document) (SpecialFields, error) {
	priceSel := doc.Find(e.sel.Price).First()
	if priceSel.Length() == 0 {
		return SpecialFields{}, ErrNoPrice
	}
	price, err := parsePrice(priceSel.Text(), e.sel.PriceUnit)
	if err != nil {
		return SpecialFields{}, err
	}

	locSel := doc.Find(e.sel.Location).First()
	if locSel.Length() == 0 {
		return SpecialFields{}, ErrNoLocation
	}

	return SpecialFields{
		Price:    price,
		Location: strings.TrimSpace(locSel.Text()),
	}, nil
}

// parsePrice drops the unit token and all whitespace, then parses an integer.
func parsePrice(raw, unit string) (int64, error) {
	if unit != "" {
		raw = strings.ReplaceAll(raw, unit, "")
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadPrice, raw)
	}
	return n, nil
}
