package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAPIKey is returned, wrapped in a ModelRequestError, when no
	// API key is configured.
	ErrMissingAPIKey = errors.New("API key not configured")

	// ErrEmptyPrompt is returned before any request is made for an empty prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")
)

// Topic is one entry of a structured summary.
type Topic struct {
	MainEntity   string `json:"main_entity"`
	NewsSentence string `json:"news_sentence"`
}

// TopicsJSON is the raw text of a schema-constrained summary, exactly as the
// model returned it. Use Parse to decode it.
type TopicsJSON string

// JSONSchema describes a strict structured-output constraint.
type JSONSchema struct {
	Name        string
	Description string
	Strict      bool
	Schema      map[string]any
}

// ModelRequestError reports any failure from the completion endpoint:
// missing credentials, auth rejection, rate limiting, schema rejection or
// transport errors. StatusCode is zero when no HTTP response was received.
type ModelRequestError struct {
	Provider   string
	Model      string
	StatusCode int
	Err        error
}

func (e *ModelRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (model=%s, status=%d): %v", e.Provider, e.Model, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed (model=%s): %v", e.Provider, e.Model, e.Err)
}

func (e *ModelRequestError) Unwrap() error { return e.Err }

// Kind classifies the failure for logs and API responses.
func (e *ModelRequestError) Kind() string {
	switch {
	case errors.Is(e.Err, ErrMissingAPIKey):
		return "auth"
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return "auth"
	case e.StatusCode == http.StatusPaymentRequired, e.StatusCode == http.StatusTooManyRequests:
		return "quota"
	case e.StatusCode == http.StatusBadRequest, e.StatusCode == http.StatusUnprocessableEntity:
		return "rejected"
	case e.StatusCode == 0:
		return "transport"
	default:
		return "upstream"
	}
}

// MalformedResponseError is returned by TopicsJSON.Parse when the model
// output does not match the topics schema.
type MalformedResponseError struct {
	Raw    string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed structured response: " + e.Reason
}
