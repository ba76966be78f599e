// Package ai turns extracted article text into summaries, theses, Telegram
// posts, translations and illustrations by calling external AI providers.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	openai "github.com/sashabaranov/go-openai"

	"referent/internal/apperr"
	"referent/internal/imagegen"
	"referent/internal/logger"
)

// Request carries one generation call's input. Content is mandatory; Title
// and URL enrich the prompt when present. Language selects the ru/en/es
// prompt table and falls back to ru.
type Request struct {
	Content  string
	Title    string
	URL      string
	Language string
}

// Orchestrator performs one upstream round-trip per action (three for
// illustration: theses, image prompt, image). It holds no per-request state
// and is safe for concurrent use. No call is ever retried; failures surface
// immediately and the caller may re-invoke.
type Orchestrator struct {
	text           Client
	textConfigured bool
	images         *imagegen.Client
	timeout        time.Duration
	actions        map[Action]*actionConfig
}

func NewOrchestrator(text Client, textConfigured bool, images *imagegen.Client, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		text:           text,
		textConfigured: textConfigured,
		images:         images,
		timeout:        timeout,
		actions:        defaultActions(),
	}
}

// Generate builds the localized prompt for the action and calls the text
// provider (and, for illustration, the image provider). It returns the raw
// result string: generated text, or a base64 data URL for illustration.
func (o *Orchestrator) Generate(ctx context.Context, action Action, req Request) (string, error) {
	cfg, ok := o.actions[action]
	if !ok {
		return "", apperr.New(apperr.CodeInvalidInput, "Неизвестное действие", http.StatusBadRequest)
	}
	if strings.TrimSpace(req.Content) == "" {
		return "", apperr.New(apperr.CodeInvalidInput, "Контент обязателен для заполнения", http.StatusBadRequest)
	}
	if !o.textConfigured {
		return "", apperr.New(apperr.CodeAPIKeyMissing,
			"OpenRouter API ключ не настроен. Обратитесь к администратору.", http.StatusInternalServerError)
	}

	lang := normalizeLang(req.Language)

	if action == ActionIllustration {
		return o.illustrate(ctx, req, lang)
	}

	ps := cfg.Prompts[lang]
	user := buildUserPrompt(action, cfg, ps, lang, req)

	out, err := o.chat(ctx, cfg.Model, cfg.Temperature, ps.System, user, cfg.ErrorCode)
	if err != nil {
		return "", err
	}

	if action == ActionTelegram && req.URL != "" {
		out = ensureSourceLink(out, req.URL, lang)
	}
	return out, nil
}

// illustrate chains three dependent steps: theses from content, an English
// image-description prompt from the theses, then the image itself. Each step
// has its own failure code; nothing runs in parallel because every step
// consumes the previous one's output.
func (o *Orchestrator) illustrate(ctx context.Context, req Request, lang string) (string, error) {
	if !o.images.Configured() {
		return "", apperr.New(apperr.CodeAPIKeyMissing,
			"Hugging Face API ключ (HUGGINGFACE_API_KEY) не настроен. Обратитесь к администратору.", http.StatusInternalServerError)
	}

	thesesCfg := o.actions[ActionTheses]
	tps := thesesCfg.Prompts[lang]
	thesesUser := buildUserPrompt(ActionTheses, thesesCfg, tps, lang, req)
	theses, err := o.chat(ctx, thesesCfg.Model, thesesCfg.Temperature, tps.System, thesesUser, apperr.CodeThesesError)
	if err != nil {
		return "", err
	}

	illCfg := o.actions[ActionIllustration]
	ips := illCfg.Prompts[lang]
	promptUser := ips.Question + "\n\n" + labels[lang].Theses + ":\n" + theses
	imagePrompt, err := o.chat(ctx, illCfg.Model, illCfg.Temperature, ips.System, promptUser, apperr.CodePromptError)
	if err != nil {
		return "", err
	}
	imagePrompt = strings.TrimSpace(imagePrompt)

	imgCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		imgCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	data, contentType, err := o.images.Generate(imgCtx, imagePrompt)
	if err != nil {
		sentry.CaptureException(err)
		return "", err
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (o *Orchestrator) chat(ctx context.Context, model string, temperature float32, system, user, errorCode string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.text.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		logger.Error("text provider request failed", "model", model, "error", err)
		return "", mapProviderError(errorCode, err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.New(apperr.CodeInvalidResponse,
			"Получен некорректный ответ от AI сервиса", http.StatusInternalServerError)
	}
	return resp.Choices[0].Message.Content, nil
}

// buildUserPrompt assembles the question, optional title, the (possibly
// truncated) content with localized labels, the source-link instruction for
// posts, and the truncation notice when content was cut.
func buildUserPrompt(action Action, cfg *actionConfig, ps promptSet, lang string, req Request) string {
	if action == ActionTranslate {
		return ps.Question + "\n\n" + req.Content
	}

	content, truncated := truncateContent(req.Content, cfg.MaxContent)

	var b strings.Builder
	b.WriteString(ps.Question)
	if req.Title != "" {
		b.WriteString(" " + labels[lang].Title + ": " + req.Title)
	}
	b.WriteString("\n\n" + labels[lang].Content + ": " + content)
	if action == ActionTelegram && req.URL != "" {
		b.WriteString("\n\n" + labels[lang].SourceInstruction + " " + req.URL)
	}
	if truncated {
		b.WriteString("\n\n" + ps.Note)
	}
	return b.String()
}

// truncateContent cuts content to max characters. Rune-based so a multibyte
// character is never split.
func truncateContent(content string, max int) (string, bool) {
	if max <= 0 {
		return content, false
	}
	runes := []rune(content)
	if len(runes) <= max {
		return content, false
	}
	return string(runes[:max]), true
}

// ensureSourceLink appends the source URL when the model left it out. The
// check is a literal case-insensitive match, so a reworded or
// tracking-parameter variant of the link counts as absent; that looseness is
// accepted best-effort behavior.
func ensureSourceLink(post, rawURL, lang string) string {
	pattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(rawURL))
	if pattern.MatchString(post) {
		return post
	}
	return strings.TrimSpace(post) + "\n\n" + labels[lang].Source + " " + rawURL
}

// mapProviderError classifies an upstream chat failure under the action's
// error code: auth for 401/403, rate limit for 429, otherwise the provider's
// own message when it sent one.
func mapProviderError(code string, err error) *apperr.Error {
	sentry.CaptureException(err)

	status := 0
	message := ""
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		message = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.New(code, "Ошибка авторизации. Проверьте настройки API ключа.", status)
	case status == http.StatusTooManyRequests:
		return apperr.New(code, "Превышен лимит запросов. Попробуйте позже.", status)
	case status >= 400:
		if message == "" {
			message = "Произошла ошибка при обращении к AI сервису"
		}
		return apperr.New(code, message, status)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.New(code, "Превышено время ожидания ответа от AI сервиса. Попробуйте позже.", http.StatusGatewayTimeout)
	}
	return apperr.New(code, "Произошла ошибка при обращении к AI сервису", http.StatusInternalServerError)
}
