package generation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"contentpilot/internal/domain/models"
	"contentpilot/internal/service/prompt"
)

const (
	defaultMaxPages = 5
	maxHeadings     = 20
	userAgent       = "contentpilot/1.0 (+content analysis)"

	// maxDocumentBytes caps how much of a sitemap or page is parsed.
	maxDocumentBytes = 5 << 20
)

// Scraper reads a site's sitemap and the heading outline of its pages, the
// raw material of a "scrape" semantic analysis.
type Scraper struct {
	client   *http.Client
	maxPages int
	maxBody  int64
}

// NewScraper wires an HTTP client; maxPages defaults to 5.
func NewScraper(client *http.Client, maxPages int) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &Scraper{client: client, maxPages: maxPages, maxBody: maxDocumentBytes}
}

// Outline returns the headings of the sitemap pages closest to topic.
// Pages that fail to load are skipped; only a missing sitemap is an error.
func (s *Scraper) Outline(ctx context.Context, site *models.Site, topic string) ([]prompt.PageOutline, error) {
	sitemapURL := sitemapFor(site)
	if sitemapURL == "" {
		return nil, fmt.Errorf("site %s has no url", site.ID)
	}

	doc, err := s.fetchDocument(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("sitemap: %w", err)
	}

	var locs []string
	doc.Find("loc").Each(func(_ int, sel *goquery.Selection) {
		if loc := strings.TrimSpace(sel.Text()); loc != "" {
			locs = append(locs, loc)
		}
	})

	pages := make([]prompt.PageOutline, 0, s.maxPages)
	for _, loc := range rankByTopic(locs, topic) {
		if len(pages) == s.maxPages {
			break
		}
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		page, err := s.fetchDocument(ctx, loc)
		if err != nil {
			continue
		}
		pages = append(pages, outlineOf(loc, page))
	}
	return pages, nil
}

func sitemapFor(site *models.Site) string {
	if site.SitemapURL != nil && strings.TrimSpace(*site.SitemapURL) != "" {
		return strings.TrimSpace(*site.SitemapURL)
	}
	if site.URL == "" {
		return ""
	}
	return strings.TrimRight(site.URL, "/") + "/sitemap.xml"
}

// rankByTopic orders URLs by how many topic words they contain, keeping sitemap order on ties.
func rankByTopic(locs []string, topic string) []string {
	words := strings.Fields(strings.ToLower(topic))
	score := func(loc string) int {
		loc = strings.ToLower(loc)
		n := 0
		for _, w := range words {
			if len([]rune(w)) > 2 && strings.Contains(loc, w) {
				n++
			}
		}
		return n
	}

	ranked := append([]string(nil), locs...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})
	return ranked
}

func outlineOf(loc string, doc *goquery.Document) prompt.PageOutline {
	out := prompt.PageOutline{
		URL:   loc,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if text := strings.Join(strings.Fields(sel.Text()), " "); text != "" {
			out.Headings = append(out.Headings, text)
		}
		return len(out.Headings) < maxHeadings
	})
	return out
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}
