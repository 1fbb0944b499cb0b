package otomoto

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"classifieds-scraper/scraper"
	"classifieds-scraper/utils"
)

// pageSlot is the substitution slot for the 1-based page number.
const pageSlot = "{}"

// ErrTemplate is returned when a URL template does not hold exactly one page slot.
var ErrTemplate = errors.New("url template must contain exactly one {} page slot")

// LinkCollector walks paginated search-result pages and gathers detail links.
type LinkCollector struct {
	fetcher scraper.Fetcher
	sel     Selectors
	logger  *utils.Logger

	// emptyPageStop ends the walk after this many consecutive pages without
	// links. Zero keeps the fixed page-count walk.
	emptyPageStop int
}

// NewLinkCollector creates a LinkCollector.
func NewLinkCollector(fetcher scraper.Fetcher, sel Selectors, emptyPageStop int, logger *utils.Logger) *LinkCollector {
	return &LinkCollector{
		fetcher:       fetcher,
		sel:           sel,
		logger:        logger,
		emptyPageStop: emptyPageStop,
	}
}

// PageURL substitutes page into template.
func PageURL(template string, page int) (string, error) {
	if strings.Count(template, pageSlot) != 1 {
		return "", fmt.Errorf("%w: %q", ErrTemplate, template)
	}
	return strings.Replace(template, pageSlot, strconv.Itoa(page), 1), nil
}

// Collect fetches pages 1..maxPages in order and returns the deduplicated
// detail links, sorted. Any fetch or parse failure aborts the walk. onPage,
// when non-nil, is called after every page with the number of links it held.
func (c *LinkCollector) Collect(ctx context.Context, template string, maxPages int, onPage func(page, found int)) ([]string, error) {
	if _, err := PageURL(template, 1); err != nil {
		return nil, err
	}

	links := utils.NewURLSet()
	emptyRun := 0

	for page := 1; page <= maxPages; page++ {
		pageURL, _ := PageURL(template, page)

		found, err := c.collectPage(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("links: page %d: %w", page, err)
		}

		added := 0
		for _, l := range found {
			if links.Add(l) {
				added++
			}
		}
		c.logger.Debug("[links] Page %d: %d links (%d new), %d unique so far", page, len(found), added, links.Size())
		if onPage != nil {
			onPage(page, len(found))
		}

		if len(found) == 0 {
			emptyRun++
			if c.emptyPageStop > 0 && emptyRun >= c.emptyPageStop {
				c.logger.Info("[links] %d consecutive empty pages, stopping at page %d", emptyRun, page)
				break
			}
		} else {
			emptyRun = 0
		}
	}

	c.logger.Info("[links] Collected %d unique links", links.Size())
	return links.Sorted(), nil
}

func (c *LinkCollector) collectPage(ctx context.Context, pageURL string) ([]string, error) {
	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	return c.extractLinks(doc, pageURL), nil
}

// extractLinks returns the href of the first anchor in every result heading.
// Headings without an anchor, or anchors without href, are skipped.
func (c *LinkCollector) extractLinks(doc *goquery.Document, pageURL string) []string {
	base, baseErr := url.Parse(pageURL)

	var links []string
	doc.Find(c.sel.ResultHeading).Each(func(_ int, h *goquery.Selection) {
		a := h.Find("a").First()
		if a.Length() == 0 {
			return
		}
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if baseErr == nil {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
		links = append(links, href)
	})
	return links
}
