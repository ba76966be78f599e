// Package apperr defines the error codes surfaced to API clients.
package apperr

// Error codes returned in the "error" field of failure responses.
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInvalidURL      = "INVALID_URL"
	CodeAPIKeyMissing   = "API_KEY_MISSING"
	CodeTimeout         = "TIMEOUT"
	CodeNetworkError    = "NETWORK_ERROR"
	CodeFetchError      = "FETCH_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeServerError     = "SERVER_ERROR"
	CodeParseError      = "PARSE_ERROR"
	CodeSummaryError    = "SUMMARY_ERROR"
	CodeThesesError     = "THESES_ERROR"
	CodeTelegramError   = "TELEGRAM_ERROR"
	CodeTranslationError = "TRANSLATION_ERROR"
	CodePromptError     = "PROMPT_ERROR"
	CodeImageError      = "IMAGE_GENERATION_ERROR"
	CodeIllustrationError = "ILLUSTRATION_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodeFeedError       = "FEED_ERROR"
)

// Error carries a machine-readable code, a user-facing message and the HTTP
// status the API should respond with. Status mirrors the upstream status
// where one exists, otherwise 500.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}
