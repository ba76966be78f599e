package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"referent/internal/apperr"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Tech News</title>
    <item>
      <title>First story</title>
      <link>https://example.com/first</link>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Second story</title>
      <link>https://example.com/second</link>
      <pubDate>not a date</pubDate>
    </item>
    <item>
      <title>Third story</title>
      <link>https://example.com/third</link>
    </item>
  </channel>
</rss>`

func TestPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	items, err := Preview(context.Background(), srv.URL, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Title != "First story" || items[0].Link != "https://example.com/first" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[0].Published != "2006-01-02T15:04:05Z" {
		t.Errorf("date not normalized: %q", items[0].Published)
	}
	if items[1].Published != "not a date" {
		t.Errorf("unparseable date must pass through: %q", items[1].Published)
	}
	if items[2].Published != "" {
		t.Errorf("missing date must stay empty: %q", items[2].Published)
	}
}

func TestPreview_LimitHonored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	items, err := Preview(context.Background(), srv.URL, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestPreview_InvalidFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not a feed</html>"))
	}))
	defer srv.Close()

	_, err := Preview(context.Background(), srv.URL, 20)
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apperr.Error, got %v", err)
	}
	if ae.Code != apperr.CodeFeedError || ae.Status != http.StatusBadGateway {
		t.Errorf("unexpected classification: %s %d", ae.Code, ae.Status)
	}
}

func TestPreview_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := Preview(context.Background(), srv.URL, 20)
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apperr.Error, got %v", err)
	}
	if ae.Code != apperr.CodeFeedError {
		t.Errorf("unexpected code: %s", ae.Code)
	}
}
