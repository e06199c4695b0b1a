package sqlbot

import (
	"fmt"
	"strconv"
	"time"
)

// ErrLLM wraps a provider-level failure (malformed request, decode failure).
type ErrLLM struct {
	Provider string
	Message  string
}

func (e *ErrLLM) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// ErrHTTP wraps a non-200 HTTP response from a provider. RetryAfter is
// parsed from the response's Retry-After header, if present; retry.go uses
// it as a floor on the backoff delay.
type ErrHTTP struct {
	Status     int
	Body       string
	RetryAfter time.Duration
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// ErrValidation reports a SQL statement rejected by the validator.
// Recovered by surfacing Reason to the user; never retried.
type ErrValidation struct {
	Reason string
}

func (e *ErrValidation) Error() string { return e.Reason }

// ErrGeneration reports an LLM-produced SQL candidate that was empty or
// unusable. The caller may retry once with Observed appended as context.
type ErrGeneration struct {
	Observed string
}

func (e *ErrGeneration) Error() string {
	if e.Observed == "" {
		return "generation: empty response"
	}
	return fmt.Sprintf("generation: unusable response: %s", e.Observed)
}

// ErrExecution reports a database error surfaced to the user without
// automatic retry.
type ErrExecution struct {
	Message string
}

func (e *ErrExecution) Error() string { return e.Message }

// ParseRetryAfter parses an HTTP Retry-After header value expressed in
// seconds. A missing or unparsable header yields zero (no floor).
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
