package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"referent/internal/ai"
	"referent/internal/apperr"
	"referent/internal/logger"
	"referent/internal/metrics"
	"referent/internal/scraper"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// parseResponse mirrors the extraction contract: fields the heuristics could
// not fill come back as JSON null, not empty strings.
type parseResponse struct {
	Date    *string `json:"date"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "error", err)
	}
}

// writeError converts any failure into the {error, message} contract. The
// HTTP status mirrors the upstream status when the error carries one,
// otherwise 500. Server-side failures also degrade the health signal.
func writeError(w http.ResponseWriter, err error, fallbackCode string) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.New(fallbackCode, "Произошла внутренняя ошибка. Попробуйте еще раз.", http.StatusInternalServerError)
	}
	logger.Error("request failed", "code", ae.Code, "status", ae.Status, "message", ae.Message)
	if ae.Status >= 500 {
		metrics.Global.SetError(ae.Code + ": " + ae.Message)
	}
	writeJSON(w, ae.Status, errorResponse{Error: ae.Code, Message: ae.Message})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, apperr.New(apperr.CodeInvalidInput,
			"URL обязателен для заполнения", http.StatusBadRequest), apperr.CodeParseError)
		return
	}
	if u, err := url.Parse(req.URL); err != nil || u.Scheme == "" || u.Host == "" {
		writeError(w, apperr.New(apperr.CodeInvalidURL,
			"Некорректный формат URL", http.StatusBadRequest), apperr.CodeParseError)
		return
	}

	body, err := s.Fetch(r.Context(), req.URL)
	if err != nil {
		metrics.Global.RecordParseFailure()
		writeError(w, err, apperr.CodeParseError)
		return
	}

	article := scraper.Parse(body, req.URL)
	metrics.Global.RecordParse()
	writeJSON(w, http.StatusOK, parseResponse{
		Date:    nullable(article.Date),
		Title:   nullable(article.Title),
		Content: nullable(article.Content),
	})
}

func (s *Server) handleGenerate(action ai.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content        string `json:"content"`
			Title          string `json:"title"`
			URL            string `json:"url"`
			TargetLanguage string `json:"targetLanguage"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidInput,
				"Некорректное тело запроса", http.StatusBadRequest), ai.ErrorCode(action))
			return
		}

		result, err := s.Generate(r.Context(), action, ai.Request{
			Content:  req.Content,
			Title:    req.Title,
			URL:      req.URL,
			Language: req.TargetLanguage,
		})
		if err != nil {
			metrics.Global.RecordGenerationFailure(string(action))
			writeError(w, err, ai.ErrorCode(action))
			return
		}

		metrics.Global.RecordGeneration(string(action))
		writeJSON(w, http.StatusOK, map[string]string{ai.ResultField(action): result})
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, apperr.New(apperr.CodeInvalidInput,
			"URL обязателен для заполнения", http.StatusBadRequest), apperr.CodeFeedError)
		return
	}
	if u, err := url.Parse(req.URL); err != nil || u.Scheme == "" || u.Host == "" {
		writeError(w, apperr.New(apperr.CodeInvalidURL,
			"Некорректный формат URL", http.StatusBadRequest), apperr.CodeFeedError)
		return
	}

	items, err := s.Feed(r.Context(), req.URL, s.FeedMaxItems)
	if err != nil {
		writeError(w, err, apperr.CodeFeedError)
		return
	}

	metrics.Global.RecordFeedPreview()
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if !stats["is_healthy"].(bool) {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"last_error": stats["last_error"],
	})
}

func handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metrics.Global.GetStats())
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
