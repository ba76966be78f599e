package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"referent/internal/ai"
	"referent/internal/config"
	"referent/internal/feed"
	"referent/internal/imagegen"
	"referent/internal/logger"
	"referent/internal/scraper"
	"referent/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("error loading configuration: ", err)
	}

	logger.Init(cfg.Debug)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logger.Warn("sentry initialization failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if cfg.OpenRouterAPIKey == "" {
		logger.Warn("OPENROUTER_API_KEY is not set, generation endpoints will report API_KEY_MISSING")
	}
	if cfg.HuggingFaceAPIKey == "" {
		logger.Warn("HUGGINGFACE_API_KEY is not set, illustration endpoint will report API_KEY_MISSING")
	}

	textClient := ai.NewOpenRouterClient(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey)
	images := &imagegen.Client{
		BaseURL: cfg.ImageBaseURL,
		Model:   cfg.ImageModel,
		APIKey:  cfg.HuggingFaceAPIKey,
	}

	orchestrator := ai.NewOrchestrator(textClient, cfg.OpenRouterAPIKey != "", images, cfg.AITimeout)
	if cfg.ModelsConfigPath != "" {
		if err := orchestrator.LoadModelOverrides(cfg.ModelsConfigPath); err != nil {
			log.Fatal("error loading model overrides: ", err)
		}
		logger.Info("model overrides applied", "path", cfg.ModelsConfigPath)
	}

	fetcher := &scraper.Fetcher{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
	}

	srv := &server.Server{
		Fetch:        fetcher.Fetch,
		Generate:     orchestrator.Generate,
		Feed:         feed.Preview,
		FeedMaxItems: cfg.FeedMaxItems,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), srv.Routes()); err != nil {
		log.Fatal(err)
	}
}
