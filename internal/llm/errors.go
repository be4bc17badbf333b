package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
)

// APIError is a provider error carrying the HTTP status and error code.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s API error (%d %s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// quotaCodes are provider error codes that mean "try again later or pay".
var quotaCodes = map[string]bool{
	"insufficient_quota":  true,
	"rate_limit_exceeded": true,
}

// IsQuota reports whether the error is a rate-limit or quota rejection.
func (e *APIError) IsQuota() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if quotaCodes[e.Code] {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "quota")
}

// Outcome is the classified result of a provider call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeQuota
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeQuota:
		return "quota"
	default:
		return "failure"
	}
}

// Classify maps a provider error to an Outcome. A missing configuration and
// an open circuit are treated like quota so callers degrade the same way.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return OutcomeQuota
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsQuota() {
		return OutcomeQuota
	}
	return OutcomeFailure
}
