package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesParsed     int64
	ParseFailures      int64
	Generations        map[string]int64
	GenerationFailures map[string]int64
	FeedPreviews       int64

	// Status
	LastRequestTime time.Time
	LastErrorTime   time.Time
	LastError       string
	IsHealthy       bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{
		Generations:        make(map[string]int64),
		GenerationFailures: make(map[string]int64),
		IsHealthy:          true,
	}
}

func (m *Metrics) RecordParse() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesParsed++
	m.LastRequestTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) RecordParseFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ParseFailures++
}

func (m *Metrics) RecordGeneration(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Generations[action]++
	m.LastRequestTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) RecordGenerationFailure(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerationFailures[action]++
}

func (m *Metrics) RecordFeedPreview() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedPreviews++
	m.LastRequestTime = time.Now()
}

// SetError marks the service degraded. Only server-side failures (5xx or
// upstream outages) should land here; client mistakes are not a health
// signal.
func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	generations := make(map[string]int64, len(m.Generations))
	for action, count := range m.Generations {
		generations[action] = count
	}
	failures := make(map[string]int64, len(m.GenerationFailures))
	for action, count := range m.GenerationFailures {
		failures[action] = count
	}

	return map[string]interface{}{
		"articles_parsed":     m.ArticlesParsed,
		"parse_failures":      m.ParseFailures,
		"generations":         generations,
		"generation_failures": failures,
		"feed_previews":       m.FeedPreviews,
		"last_request_time":   m.LastRequestTime.Format(time.RFC3339),
		"last_error_time":     m.LastErrorTime.Format(time.RFC3339),
		"last_error":          m.LastError,
		"is_healthy":          m.IsHealthy,
	}
}
