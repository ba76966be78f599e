// Package scraper extracts article title, date and body text from arbitrary
// HTML using ranked selector lists, and fetches pages over HTTP.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"referent/internal/apperr"
)

// Article is the best-effort extraction result. Fields the heuristics could
// not fill stay empty; extraction never fails on missing data.
type Article struct {
	URL     string
	Title   string
	Date    string
	Content string
}

// Selector lists are ordered: specific, semantic selectors first, generic
// class-pattern wildcards last, so sites with conflicting class names match
// the precise candidate before the noisy one.
var titleSelectors = []string{
	"h1",
	"article h1",
	".post-title",
	".article-title",
	".entry-title",
	"[class*='title']",
	"title",
}

var dateSelectors = []string{
	"time[datetime]",
	"time",
	`[class*="date"]`,
	`[class*="published"]`,
	`[class*="time"]`,
	`meta[property="article:published_time"]`,
	`meta[name="publish-date"]`,
	`meta[name="date"]`,
}

var contentSelectors = []string{
	"article",
	".post",
	".content",
	".article-content",
	".entry-content",
	".post-content",
	"[class*='article']",
	"[class*='content']",
	"main",
	`[role="article"]`,
}

// Noise subtrees removed from a content candidate before its text is measured.
const contentNoise = "script, style, nav, aside, .ad, .advertisement, .sidebar"
const bodyNoise = "script, style, nav, header, footer, aside, .ad"

// Minimum lengths that make a candidate acceptable. Short headings are
// usually section labels, not article titles.
const (
	minTitleRunes   = 10
	minContentRunes = 100
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	blankLineRuns  = regexp.MustCompile(`\n\s*\n`)
)

// Parse runs the extraction heuristics over already-downloaded HTML. It is a
// pure function of its input: parsing the same bytes twice yields the same
// Article. Unparseable input yields an empty Article, never an error.
func Parse(htmlBody []byte, sourceURL string) Article {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return Article{URL: sourceURL}
	}

	return Article{
		URL:     sourceURL,
		Title:   extractTitle(doc),
		Date:    extractDate(doc),
		Content: extractContent(doc),
	}
}

func extractTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		found := strings.TrimSpace(doc.Find(selector).First().Text())
		if found != "" && utf8.RuneCountInString(found) > minTitleRunes {
			return found
		}
	}

	// No qualifying heading: Open Graph title, then the raw <title>.
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && og != "" {
		return og
	}
	return strings.TrimSpace(doc.Find("title").Text())
}

func extractDate(doc *goquery.Document) string {
	for _, selector := range dateSelectors {
		if strings.HasPrefix(selector, "meta") {
			if found, ok := doc.Find(selector).Attr("content"); ok && found != "" {
				return found
			}
			continue
		}
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		date := found.AttrOr("datetime", "")
		if date == "" {
			date = found.AttrOr("content", "")
		}
		if date == "" {
			date = strings.TrimSpace(found.Text())
		}
		if date != "" {
			return date
		}
	}
	return ""
}

func extractContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		found.Find(contentNoise).Remove()
		text := strings.TrimSpace(found.Text())
		if text != "" && utf8.RuneCountInString(text) > minContentRunes {
			return cleanContent(text)
		}
	}

	// No candidate qualified: strip the whole body down and take what's left.
	body := doc.Find("body")
	body.Find(bodyNoise).Remove()
	return cleanContent(strings.TrimSpace(body.Text()))
}

// cleanContent collapses whitespace runs to single spaces and blank-line runs
// to a single blank line.
func cleanContent(text string) string {
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

const fetchFailedMessage = "Не удалось загрузить статью по этой ссылке."

// Fetcher downloads article pages with a browser-like User-Agent and a hard
// timeout. Fetch failures come back as apperr values carrying the taxonomy
// code and HTTP status the API reports.
type Fetcher struct {
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func (f *Fetcher) client() *http.Client {
	if f.HTTPClient != nil {
		return f.HTTPClient
	}
	return http.DefaultClient
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalidURL, "Некорректный формат URL", http.StatusBadRequest)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, classifyFetchError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.New(apperr.CodeNotFound, fetchFailedMessage, http.StatusNotFound)
	case resp.StatusCode >= 500:
		return nil, apperr.New(apperr.CodeServerError, fetchFailedMessage, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, apperr.New(apperr.CodeFetchError, fetchFailedMessage, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.New(apperr.CodeFetchError, fetchFailedMessage, http.StatusInternalServerError)
	}
	return body, nil
}

func classifyFetchError(err error) *apperr.Error {
	var uerr *url.Error
	timedOut := errors.Is(err, context.DeadlineExceeded)
	if errors.As(err, &uerr) && uerr.Timeout() {
		timedOut = true
	}
	if timedOut {
		return apperr.New(apperr.CodeTimeout, fetchFailedMessage, http.StatusRequestTimeout)
	}
	if errors.As(err, &uerr) {
		return apperr.New(apperr.CodeNetworkError, fetchFailedMessage, http.StatusServiceUnavailable)
	}
	return apperr.New(apperr.CodeFetchError, fetchFailedMessage, http.StatusInternalServerError)
}
