// Package server exposes the HTTP API: article extraction, the five
// generation actions, feed preview, and the monitoring endpoints.
package server

import (
	"context"
	"net/http"

	"referent/internal/ai"
	"referent/internal/feed"
)

// Dependency seams are plain function types so tests can stub the fetcher,
// the orchestrator and the feed parser without network or providers.
type (
	FetchFunc    func(ctx context.Context, url string) ([]byte, error)
	GenerateFunc func(ctx context.Context, action ai.Action, req ai.Request) (string, error)
	FeedFunc     func(ctx context.Context, url string, limit int) ([]feed.Item, error)
)

type Server struct {
	Fetch        FetchFunc
	Generate     GenerateFunc
	Feed         FeedFunc
	FeedMaxItems int
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/parse", s.handleParse)
	mux.HandleFunc("POST /api/summary", s.handleGenerate(ai.ActionSummary))
	mux.HandleFunc("POST /api/theses", s.handleGenerate(ai.ActionTheses))
	mux.HandleFunc("POST /api/telegram", s.handleGenerate(ai.ActionTelegram))
	mux.HandleFunc("POST /api/translate", s.handleGenerate(ai.ActionTranslate))
	mux.HandleFunc("POST /api/illustration", s.handleGenerate(ai.ActionIllustration))
	mux.HandleFunc("POST /api/feed", s.handleFeed)
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /metrics", handleMetrics)
	return mux
}
