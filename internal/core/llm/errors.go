package llm

import (
	"errors"
	"fmt"
)

// Kind classifies a structuring failure.
type Kind string

const (
	KindAuth      Kind = "auth"       // 401
	KindRateLimit Kind = "rate_limit" // 429
	KindRequest   Kind = "request"    // other non-2xx, transport, timeout
	KindParse     Kind = "parse"      // undecodable envelope, schema failure
)

// Sentinels matched by StructuringError via errors.Is.
var (
	ErrAuthentication    = errors.New("llm: authentication failed")
	ErrRateLimited       = errors.New("llm: rate limited")
	ErrRequestFailed     = errors.New("llm: request failed")
	ErrMalformedResponse = errors.New("llm: malformed response")
)

// StructuringError is returned by backends for any transport or parsing failure.
type StructuringError struct {
	Kind    Kind
	Status  int // HTTP status, 0 when no response was received
	Message string
	Cause   error
}

func (e *StructuringError) Error() string {
	msg := fmt.Sprintf("llm %s error", e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StructuringError) Unwrap() error { return e.Cause }

func (e *StructuringError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Kind == KindAuth
	case ErrRateLimited:
		return e.Kind == KindRateLimit
	case ErrRequestFailed:
		return e.Kind == KindRequest
	case ErrMalformedResponse:
		return e.Kind == KindParse
	}
	return false
}

// StatusError maps a non-2xx HTTP status to a StructuringError.
func StatusError(status int, body []byte) *StructuringError {
	e := &StructuringError{Kind: KindRequest, Status: status, Message: truncate(string(body), 512)}
	switch status {
	case 401:
		e.Kind = KindAuth
	case 429:
		e.Kind = KindRateLimit
	}
	return e
}

// RequestError wraps a transport failure.
func RequestError(cause error) *StructuringError {
	return &StructuringError{Kind: KindRequest, Cause: cause}
}

// ParseError wraps a decoding or validation failure.
func ParseError(msg string, cause error) *StructuringError {
	return &StructuringError{Kind: KindParse, Message: msg, Cause: cause}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
