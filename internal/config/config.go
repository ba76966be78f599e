package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings. Values come from the environment with
// the REFERENT_ prefix; provider credentials also resolve from their
// conventional unprefixed names (OPENROUTER_API_KEY, HUGGINGFACE_API_KEY).
type Config struct {
	Port  int  `default:"8080"`
	Debug bool `default:"false"`

	// Text-generation provider (OpenRouter-compatible chat completions)
	OpenRouterAPIKey  string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`

	// Image-generation provider (Hugging Face inference router)
	HuggingFaceAPIKey string `envconfig:"HUGGINGFACE_API_KEY"`
	ImageBaseURL      string `envconfig:"IMAGE_BASE_URL" default:"https://router.huggingface.co/hf-inference/models"`
	ImageModel        string `envconfig:"IMAGE_MODEL" default:"stabilityai/stable-diffusion-xl-base-1.0"`

	// Article page fetch
	FetchTimeout time.Duration `split_words:"true" default:"30s"`
	UserAgent    string        `split_words:"true" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`

	// Upstream AI calls carry a bounded timeout so a stalled provider
	// cannot pin a request forever.
	AITimeout time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`

	// Optional YAML file overriding per-action models and temperatures.
	ModelsConfigPath string `split_words:"true"`

	// Feed preview
	FeedMaxItems int `split_words:"true" default:"20"`

	// Error reporting
	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("referent", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, cfg.Validate()
}

// Validate checks structural settings. Provider keys are deliberately not
// required here: extraction and feed preview work without them, and the
// generation endpoints report API_KEY_MISSING per request.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be a valid TCP port, got %d", c.Port)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.FeedMaxItems <= 0 {
		return fmt.Errorf("FEED_MAX_ITEMS must be positive")
	}
	return nil
}
