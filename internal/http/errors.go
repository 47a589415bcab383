package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
	Body   string // leading part of the response body
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected response status %s", e.Status)
	}
	return fmt.Sprintf("unexpected response status %s: %s", e.Status, e.Body)
}

// ErrorType classifies a submission failure for diagnostics.
type ErrorType int

const (
	// ErrorTypeSuccess indicates no error
	ErrorTypeSuccess ErrorType = iota
	// ErrorTypeNetwork indicates connection problems (refused, reset, DNS, timeouts)
	ErrorTypeNetwork
	// ErrorTypeServer indicates a 5xx or 429 response
	ErrorTypeServer
	// ErrorTypeClient indicates a 4xx response other than 429
	ErrorTypeClient
	// ErrorTypeCanceled indicates the caller gave up
	ErrorTypeCanceled
	// ErrorTypeUnknown is everything else
	ErrorTypeUnknown
)

// ClassifyError determines the error type of a failed submission.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSuccess
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Code == 429 || statusErr.Code >= 500:
			return ErrorTypeServer
		case statusErr.Code >= 400:
			return ErrorTypeClient
		default:
			return ErrorTypeUnknown
		}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorTypeCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorTypeNetwork
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "tls handshake timeout") ||
		strings.Contains(errStr, "eof") ||
		strings.Contains(errStr, "no such host") {
		return ErrorTypeNetwork
	}

	return ErrorTypeUnknown
}

// ErrorTypeName returns a human-readable name for an ErrorType
func ErrorTypeName(errType ErrorType) string {
	switch errType {
	case ErrorTypeSuccess:
		return "success"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeServer:
		return "server"
	case ErrorTypeClient:
		return "client"
	case ErrorTypeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}
