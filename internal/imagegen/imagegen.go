// Package imagegen calls a Hugging Face style inference endpoint that takes
// a text prompt and returns raw image bytes.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"referent/internal/apperr"
	"referent/internal/logger"
)

type Client struct {
	BaseURL    string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Configured reports whether a credential is present. Callers surface
// API_KEY_MISSING before attempting any upstream call.
func (c *Client) Configured() bool {
	return c != nil && c.APIKey != ""
}

// Generate posts the prompt and returns the image bytes with their declared
// content type. A success status with a non-image content type is still a
// failure: the body is read as an error payload instead.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, string, error) {
	payload, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return nil, "", apperr.New(apperr.CodeImageError, "Произошла ошибка при генерации изображения", http.StatusInternalServerError)
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/" + c.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", apperr.New(apperr.CodeImageError, "Произошла ошибка при генерации изображения", http.StatusInternalServerError)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client().Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, "", apperr.New(apperr.CodeImageError, "Превышено время ожидания генерации изображения. Попробуйте позже.", http.StatusGatewayTimeout)
		}
		return nil, "", apperr.New(apperr.CodeImageError, "Произошла ошибка при генерации изображения", http.StatusBadGateway)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperr.New(apperr.CodeImageError, "Произошла ошибка при генерации изображения", http.StatusInternalServerError)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", apperr.New(apperr.CodeImageError, errorMessage(resp.StatusCode, body, c.Model), resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	if !strings.HasPrefix(contentType, "image/") {
		logger.Error("image provider returned non-image response",
			"content_type", contentType,
			"body", truncate(string(body), 500))
		msg := parseErrorPayload(body)
		if msg == "" {
			msg = "Сервис вернул некорректный ответ."
		}
		return nil, "", apperr.New(apperr.CodeImageError, msg, http.StatusInternalServerError)
	}

	return body, contentType, nil
}

// errorMessage maps upstream failure statuses to operator-facing text,
// falling back to whatever message the provider supplied.
func errorMessage(status int, body []byte, model string) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "Модель загружается. Подождите несколько секунд и попробуйте снова."
	case http.StatusUnauthorized, http.StatusForbidden:
		return "Ошибка авторизации Hugging Face. Проверьте настройки API ключа."
	case http.StatusNotFound:
		return fmt.Sprintf("Модель %s не найдена. Возможно, модель недоступна через Inference API.", model)
	}
	if msg := parseErrorPayload(body); msg != "" {
		return msg
	}
	if len(body) > 0 {
		return "Ошибка API: " + truncate(string(body), 200)
	}
	return "Произошла ошибка при генерации изображения"
}

// parseErrorPayload pulls a human-readable message out of a structured error
// body. Providers answer either {"error": "..."}, {"error": {"message":
// "..."}} or {"message": "..."}; anything else comes back truncated as-is.
func parseErrorPayload(body []byte) string {
	var structured struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &structured); err != nil {
		return truncate(strings.TrimSpace(string(body)), 200)
	}
	if len(structured.Error) > 0 {
		var plain string
		if err := json.Unmarshal(structured.Error, &plain); err == nil && plain != "" {
			return plain
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(structured.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return structured.Message
}

func isTimeout(err error) bool {
	var uerr *url.Error
	return errors.As(err, &uerr) && uerr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
