package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes the rest of the program
// branches on. Wrap with %w so callers can use errors.Is.
var (
	// ErrMissingAPIKey blocks exchange creation only; browsing works without a key
	ErrMissingAPIKey = errors.New("missing API key: set SWAPDESK_API_KEY or api_key in .swapdesk.yaml")

	// ErrBadRequest means the provider rejected the request parameters
	ErrBadRequest = errors.New("the provider rejected the request parameters")

	// ErrAuthFailed means the API key was rejected
	ErrAuthFailed = errors.New("authentication failed, check your API key")

	// ErrRateLimited means the provider throttled the request
	ErrRateLimited = errors.New("rate limited by the provider, try again shortly")

	// ErrTransient covers network failures and unexpected provider outages.
	// Status polling treats these as retryable and never gives up on them.
	ErrTransient = errors.New("the swap provider is temporarily unreachable")

	// ErrInvalidShape means the provider returned a payload the client
	// does not recognize. It fails that call only.
	ErrInvalidShape = errors.New("unexpected response format from the provider")
)

// ProviderError carries the HTTP status and the provider's own message
// alongside the sentinel classification.
type ProviderError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (status %d): %s", e.kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v (status %d)", e.kind, e.StatusCode)
}

func (e *ProviderError) Unwrap() error {
	return e.kind
}

// classifyStatus converts a non-2xx response into a typed error,
// extracting the provider's message from the body when parseable.
func classifyStatus(statusCode int, body []byte) error {
	var kind error
	switch statusCode {
	case 400:
		kind = ErrBadRequest
	case 401, 403:
		kind = ErrAuthFailed
	case 429:
		kind = ErrRateLimited
	default:
		kind = ErrTransient
	}

	return &ProviderError{
		StatusCode: statusCode,
		Message:    extractMessage(body),
		kind:       kind,
	}
}

// extractMessage pulls a human-readable message out of an error body.
// The provider is inconsistent about the field name.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, field := range []string{"message", "error", "description"} {
		if msg, ok := payload[field].(string); ok && msg != "" {
			return msg
		}
	}
	return ""
}
