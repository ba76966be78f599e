package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"referent/internal/apperr"
)

const longParagraph = "The committee published its long-awaited report on Tuesday, " +
	"outlining twelve separate recommendations for reforming the agency. " +
	"Observers called the document the most consequential review in a decade."

func TestParse_TitleFromHeading(t *testing.T) {
	html := `<html><body><h1> Go 1.24 Release Notes and Highlights </h1></body></html>`
	article := Parse([]byte(html), "https://example.com/a")
	if article.Title != "Go 1.24 Release Notes and Highlights" {
		t.Fatalf("unexpected title: %q", article.Title)
	}
}

func TestParse_TitleRejectsShortHeading(t *testing.T) {
	html := `<html><head>
		<meta property="og:title" content="A Proper Open Graph Title">
		<title>Page</title>
	</head><body><h1>News</h1></body></html>`
	article := Parse([]byte(html), "https://example.com/a")
	if article.Title != "A Proper Open Graph Title" {
		t.Fatalf("expected og:title fallback, got %q", article.Title)
	}
}

func TestParse_TitleFallbackToTitleElement(t *testing.T) {
	html := `<html><head><title>Short</title></head><body><h1>Hi</h1></body></html>`
	article := Parse([]byte(html), "https://example.com/a")
	if article.Title != "Short" {
		t.Fatalf("expected <title> fallback, got %q", article.Title)
	}
}

func TestParse_TitleAbsent(t *testing.T) {
	html := `<html><body><p>no headings here</p></body></html>`
	article := Parse([]byte(html), "https://example.com/a")
	if article.Title != "" {
		t.Fatalf("expected empty title, got %q", article.Title)
	}
}

func TestParse_DatePrefersDatetimeAttribute(t *testing.T) {
	html := `<html><body><time datetime="2024-01-01T10:00:00Z">1 January 2024</time></body></html>`
	article := Parse([]byte(html), "https://example.com/a")
	if article.Date != "2024-01-01T10:00:00Z" {
		t.Fatalf("unexpected date: %q", article.Date)
	}
}

func TestParse_DateFromMetaContent(t *testing.T) {
	html := `<html><head>
		<meta property="article:published_time" content="2024-03-15">
	</head><body><p>text</p></body></html>`
	article := Parse([]byte(html), "https://example.com/a")
	if article.Date != "2024-03-15" {
		t.Fatalf("unexpected date: %q", article.Date)
	}
}

func TestParse_DateElementTextFallback(t *testing.T) {
	html := `<html><body><span class="published">15 March 2024</span></body></html>`
	article := Parse([]byte(html), "https://example.com/a")
	if article.Date != "15 March 2024" {
		t.Fatalf("unexpected date: %q", article.Date)
	}
}

func TestParse_ContentStripsNoise(t *testing.T) {
	html := `<html><body><article>
		<script>console.log("tracking")</script>
		<style>.x{color:red}</style>
		<nav>Navigation menu</nav>
		<aside>Related links</aside>
		<div class="sidebar">Sidebar junk</div>
		<div class="ad">Buy now</div>
		<p>` + longParagraph + `</p>
	</article></body></html>`
	article := Parse([]byte(html), "https://example.com/a")

	if !strings.Contains(article.Content, "twelve separate recommendations") {
		t.Fatalf("article text missing from content: %q", article.Content)
	}
	for _, noise := range []string{"console.log", "color:red", "Navigation menu", "Related links", "Sidebar junk", "Buy now"} {
		if strings.Contains(article.Content, noise) {
			t.Errorf("content includes noise %q", noise)
		}
	}
}

func TestParse_ContentFallbackToBody(t *testing.T) {
	html := `<html><body>
		<script>var x = 1;</script>
		<header>Site header</header>
		<nav>menu</nav>
		<div><p>` + longParagraph + `</p></div>
		<footer>Site footer</footer>
	</body></html>`
	article := Parse([]byte(html), "https://example.com/a")

	if !strings.Contains(article.Content, "twelve separate recommendations") {
		t.Fatalf("expected body fallback content, got %q", article.Content)
	}
	for _, noise := range []string{"var x = 1", "Site header", "Site footer", "menu"} {
		if strings.Contains(article.Content, noise) {
			t.Errorf("content includes stripped noise %q", noise)
		}
	}
}

func TestParse_ContentCandidateTooShortIsSkipped(t *testing.T) {
	html := `<html><body>
		<article>short</article>
		<div><p>` + longParagraph + `</p></div>
	</body></html>`
	article := Parse([]byte(html), "https://example.com/a")
	if !strings.Contains(article.Content, "twelve separate recommendations") {
		t.Fatalf("expected fallback past short candidate, got %q", article.Content)
	}
}

func TestParse_WhitespaceCollapsed(t *testing.T) {
	html := `<html><body><article><p>` + longParagraph + `</p>
		<p>Second    paragraph

		with   gaps.</p></article></body></html>`
	article := Parse([]byte(html), "https://example.com/a")
	if strings.Contains(article.Content, "  ") {
		t.Errorf("content contains uncollapsed spaces: %q", article.Content)
	}
	if strings.Contains(article.Content, "\n") {
		t.Errorf("content contains uncollapsed newlines: %q", article.Content)
	}
}

func TestParse_Idempotent(t *testing.T) {
	html := `<html><head><title>Some Long Enough Title</title></head><body><article>
		<h1>A Headline Longer Than Ten Characters</h1>
		<time datetime="2024-01-01">Jan 1</time>
		<p>` + longParagraph + `</p>
	</article></body></html>`

	first := Parse([]byte(html), "https://example.com/a")
	second := Parse([]byte(html), "https://example.com/a")
	if first != second {
		t.Fatalf("extraction not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	article := Parse(nil, "https://example.com/a")
	if article.Title != "" || article.Date != "" || article.Content != "" {
		t.Fatalf("expected empty article, got %+v", article)
	}
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("expected browser-like user agent, got %q", ua)
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := &Fetcher{UserAgent: "Mozilla/5.0 (test)", Timeout: 2 * time.Second}
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := &Fetcher{Timeout: 2 * time.Second}
	_, err := f.Fetch(context.Background(), srv.URL)
	assertCode(t, err, apperr.CodeNotFound, http.StatusNotFound)
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := &Fetcher{Timeout: 2 * time.Second}
	_, err := f.Fetch(context.Background(), srv.URL)
	assertCode(t, err, apperr.CodeServerError, http.StatusBadGateway)
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	f := &Fetcher{Timeout: 2 * time.Second}
	_, err := f.Fetch(context.Background(), srv.URL)
	assertCode(t, err, apperr.CodeFetchError, http.StatusTeapot)
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	f := &Fetcher{Timeout: 50 * time.Millisecond}
	_, err := f.Fetch(context.Background(), srv.URL)
	assertCode(t, err, apperr.CodeTimeout, http.StatusRequestTimeout)
}

func TestFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	f := &Fetcher{Timeout: 2 * time.Second}
	_, err := f.Fetch(context.Background(), srv.URL)
	assertCode(t, err, apperr.CodeNetworkError, http.StatusServiceUnavailable)
}

func assertCode(t *testing.T, err error, code string, status int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apperr.Error, got %T: %v", err, err)
	}
	if ae.Code != code {
		t.Errorf("expected code %s, got %s", code, ae.Code)
	}
	if ae.Status != status {
		t.Errorf("expected status %d, got %d", status, ae.Status)
	}
}
