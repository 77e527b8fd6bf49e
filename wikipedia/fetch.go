package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/zbanks/wikigame/puzzle"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// UserAgent identifies requests to Wikipedia, which refuses generic agents.
const UserAgent = "wikigame/1.0 (table of contents guessing game; https://github.com/zbanks/wiki-game)"

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 10 * time.Second

// Article is the part of a Wikipedia page a puzzle needs.
type Article struct {
	Title string
	URL   string // canonical URL when the page declares one
	TOC   []puzzle.Entry
}

// Fetcher retrieves articles over HTTP.
type Fetcher struct {
	client    *http.Client
	selectors Selectors
}

// NewFetcher creates a fetcher. A nil client gets a client with
// DefaultTimeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	return &Fetcher{
		client:    client,
		selectors: DefaultSelectors(),
	}
}

// Fetch downloads the article at url and extracts its title and table of
// contents. Retrieval failures are *puzzle.NetworkError, pages without a
// usable title or contents are *puzzle.ParseError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Article, error) {
	doc, err := f.FetchHTML(ctx, url)
	if err != nil {
		return nil, err
	}

	return ExtractArticle(doc, f.selectors, url)
}

// FetchHTML fetches and parses the page at url. There is no retry.
func (f *Fetcher) FetchHTML(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &puzzle.NetworkError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &puzzle.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &puzzle.NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &puzzle.ParseError{Source: url, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	// Relative links such as the canonical URL resolve against the final
	// location after redirects
	doc.Url = resp.Request.URL

	return doc, nil
}

// ExtractArticle reads the title, canonical URL and table of contents out of
// a parsed page. pageURL is used when the page has no canonical link.
func ExtractArticle(doc *goquery.Document, sel Selectors, pageURL string) (*Article, error) {
	article := &Article{
		URL: pageURL,
	}

	// Title: the page heading, falling back to any h1
	title := normalizeSpace(doc.Find(sel.Title).First().Text())
	if title == "" {
		title = normalizeSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		return nil, &puzzle.ParseError{Source: pageURL, Err: fmt.Errorf("page has no title heading")}
	}
	article.Title = title

	if canonical, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && canonical != "" {
		article.URL = resolveURL(doc, canonical)
	}

	for _, extract := range []func(*goquery.Document, Selectors) []puzzle.Entry{
		extractLegacyTOC,
		extractVectorTOC,
		extractHeadings,
	} {
		if entries := extract(doc, sel); len(entries) > 0 {
			article.TOC = entries
			return article, nil
		}
	}

	return nil, &puzzle.ParseError{Source: pageURL, Err: fmt.Errorf("page has no table of contents")}
}

// extractLegacyTOC reads the classic contents box.
func extractLegacyTOC(doc *goquery.Document, sel Selectors) []puzzle.Entry {
	var entries []puzzle.Entry

	doc.Find(sel.LegacyTOC).First().Find("a").Each(func(_ int, a *goquery.Selection) {
		number := normalizeSpace(a.Find("span.tocnumber").First().Text())
		text := normalizeSpace(a.Find("span.toctext").First().Text())
		if number == "" || text == "" {
			return
		}
		entries = append(entries, puzzle.Entry{
			Number: number,
			Level:  puzzle.LevelFromNumber(number),
			Text:   text,
		})
	})

	return entries
}

// extractVectorTOC reads the Vector 2022 sidebar. The "(Top)" item has no
// section number and is skipped.
func extractVectorTOC(doc *goquery.Document, sel Selectors) []puzzle.Entry {
	var entries []puzzle.Entry

	doc.Find(sel.VectorTOC).Each(func(_ int, li *goquery.Selection) {
		label := li.ChildrenFiltered("a").First().Find(".vector-toc-text").First()
		number := normalizeSpace(label.Find(".vector-toc-numb").First().Text())
		text := normalizeSpace(label.Children().Not(".vector-toc-numb").Text())
		if number == "" || text == "" {
			return
		}
		entries = append(entries, puzzle.Entry{
			Number: number,
			Level:  puzzle.LevelFromNumber(number),
			Text:   text,
		})
	})

	return entries
}

// headingLevels maps section heading tags to depth below the article title.
var headingLevels = map[atom.Atom]int{
	atom.H2: 0,
	atom.H3: 1,
	atom.H4: 2,
	atom.H5: 3,
	atom.H6: 4,
}

// extractHeadings builds a table of contents from the section headings of
// the article body, numbering them the way Wikipedia does.
func extractHeadings(doc *goquery.Document, sel Selectors) []puzzle.Entry {
	var entries []puzzle.Entry
	var counters []int

	doc.Find(sel.Content).First().Find("h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		if sel.Ignore != "" && h.Closest(sel.Ignore).Length() > 0 {
			return
		}

		text := headingText(h)
		if text == "" || strings.EqualFold(text, "Contents") {
			return
		}

		level := headingLevels[nodeAtom(h)]
		// A level may only be one deeper than the previous heading
		if level > len(counters) {
			level = len(counters)
		}
		if level < len(counters) {
			counters = counters[:level+1]
			counters[level]++
		} else {
			counters = append(counters, 1)
		}

		parts := make([]string, len(counters))
		for i, n := range counters {
			parts[i] = strconv.Itoa(n)
		}

		entries = append(entries, puzzle.Entry{
			Number: strings.Join(parts, "."),
			Level:  level,
			Text:   text,
		})
	})

	return entries
}

// headingText returns the visible heading text without "[edit]" links.
func headingText(h *goquery.Selection) string {
	if headline := h.Find(".mw-headline"); headline.Length() > 0 {
		return normalizeSpace(headline.First().Text())
	}

	text := h.Text()
	h.Find(".mw-editsection").Each(func(_ int, s *goquery.Selection) {
		text = strings.Replace(text, s.Text(), "", 1)
	})
	return normalizeSpace(text)
}

func nodeAtom(s *goquery.Selection) atom.Atom {
	if len(s.Nodes) == 0 || s.Nodes[0].Type != html.ElementNode {
		return 0
	}
	return s.Nodes[0].DataAtom
}

// resolveURL makes href absolute against the document location, if known.
func resolveURL(doc *goquery.Document, href string) string {
	if doc.Url == nil {
		return href
	}
	ref, err := doc.Url.Parse(href)
	if err != nil {
		return href
	}
	return ref.String()
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
