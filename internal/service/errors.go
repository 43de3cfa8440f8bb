package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind identifies a class of AI provider failure. Every error that
// crosses a provider client boundary is mapped onto one of these kinds.
type ErrorKind string

const (
	ErrAPIKeyMissing    ErrorKind = "API_KEY_MISSING"
	ErrAPIError         ErrorKind = "API_ERROR"
	ErrNetworkError     ErrorKind = "NETWORK_ERROR"
	ErrRateLimited      ErrorKind = "RATE_LIMITED"
	ErrInvalidResponse  ErrorKind = "INVALID_RESPONSE"
	ErrGenerationFailed ErrorKind = "GENERATION_FAILED"
	ErrTimeout          ErrorKind = "TIMEOUT_ERROR"
	ErrServerError      ErrorKind = "SERVER_ERROR"
)

// userMessages maps each kind to the fixed message shown to the user.
var userMessages = map[ErrorKind]string{
	ErrAPIKeyMissing:    "The assistant is not configured yet. Please add an API key and try again.",
	ErrAPIError:         "Something went wrong talking to the assistant. Please try again.",
	ErrNetworkError:     "Connection issue. Please check your internet and try again.",
	ErrRateLimited:      "Too many requests right now. Please wait a moment and try again.",
	ErrInvalidResponse:  "The assistant sent back something we couldn't read. Please try again.",
	ErrGenerationFailed: "The assistant couldn't complete that request. Try rephrasing it.",
	ErrTimeout:          "The request took too long. Please try again.",
	ErrServerError:      "The assistant service is having trouble. Please try again shortly.",
}

// retryableKinds are transient failures worth a retry without user action.
var retryableKinds = map[ErrorKind]bool{
	ErrNetworkError: true,
	ErrRateLimited:  true,
	ErrTimeout:      true,
	ErrServerError:  true,
}

// AIError is a classified provider error. It carries the fixed user-facing
// message for its kind and wraps the underlying cause.
type AIError struct {
	Kind ErrorKind
	Err  error
}

func (e *AIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *AIError) Unwrap() error {
	return e.Err
}

// UserMessage returns the fixed, friendly message for this error's kind.
func (e *AIError) UserMessage() string {
	return userMessages[e.Kind]
}

// Retryable reports whether the failure is transient.
func (e *AIError) Retryable() bool {
	return retryableKinds[e.Kind]
}

// NewAIError wraps err with an explicit kind.
func NewAIError(kind ErrorKind, err error) *AIError {
	return &AIError{Kind: kind, Err: err}
}

// Keyword sets used to classify untyped errors, matched in priority order.
var (
	timeoutKeywords = []string{"timeout", "timed out", "deadline exceeded", "context canceled"}
	networkKeywords = []string{"connection refused", "econnrefused", "no such host", "network is unreachable", "connection reset", "broken pipe", "dial tcp", "eof"}
	rateKeywords    = []string{"rate limit", "too many requests", "quota", "429"}
	serverKeywords  = []string{"internal server error", "bad gateway", "service unavailable", "status 500", "status 502", "status 503", "overloaded"}
	safetyKeywords  = []string{"content policy", "safety", "content_filter", "refused", "blocked"}
)

// Classify maps any error onto the fixed taxonomy. Already-classified
// errors pass through unchanged, so classification is idempotent.
func Classify(err error) *AIError {
	if err == nil {
		return nil
	}

	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewAIError(ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewAIError(ErrTimeout, err)
		}
		return NewAIError(ErrNetworkError, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, timeoutKeywords):
		return NewAIError(ErrTimeout, err)
	case containsAny(msg, networkKeywords):
		return NewAIError(ErrNetworkError, err)
	case containsAny(msg, rateKeywords):
		return NewAIError(ErrRateLimited, err)
	case containsAny(msg, serverKeywords):
		return NewAIError(ErrServerError, err)
	case containsAny(msg, safetyKeywords):
		return NewAIError(ErrGenerationFailed, err)
	default:
		return NewAIError(ErrAPIError, err)
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
