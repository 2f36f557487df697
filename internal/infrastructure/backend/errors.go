package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/kirillkom/docresult-viewer/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "backend status error"
	}
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if strings.TrimSpace(e.Body) == "" {
		return status
	}
	return fmt.Sprintf("%s: %s", status, strings.TrimSpace(e.Body))
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// responseTooLargeError rejects a body longer than the read limit instead of
// returning a truncated prefix.
type responseTooLargeError struct {
	limit int64
}

func (e *responseTooLargeError) Error() string {
	return fmt.Sprintf("response exceeds %d bytes", e.limit)
}

// backendErrorPayload is an error object returned where a document was expected.
type backendErrorPayload struct {
	Message string
}

func (e *backendErrorPayload) Error() string { return "backend error: " + e.Message }

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// describeError renders the cause part of a transport failure message.
// Timeouts always contain "timeout" so the classifier can recognise them.
func describeError(err error, timeout time.Duration) string {
	switch {
	case resilience.IsCircuitOpen(err):
		return "Connection failed: backend unavailable (circuit open)"
	case isTimeout(err):
		return fmt.Sprintf("timeout after %s: %v", timeout, err)
	case isConnectionError(err):
		return "Connection failed: " + err.Error()
	default:
		return err.Error()
	}
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var statusErr *HTTPStatusError
	var decodeErr *decodeError
	var payloadErr *backendErrorPayload
	var tooLargeErr *responseTooLargeError
	switch {
	case resilience.IsCircuitOpen(err):
		return "circuit_open"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case isTimeout(err):
		return "timeout"
	case isConnectionError(err):
		return "connection_error"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("http_%dxx", statusErr.StatusCode/100)
	case errors.As(err, &decodeErr):
		return "decode_error"
	case errors.As(err, &payloadErr):
		return "backend_error"
	case errors.As(err, &tooLargeErr):
		return "too_large"
	default:
		return "error"
	}
}

// classifyTransportError tells the breaker which failures mean the backend is
// unhealthy. Client-side 4xx and payload problems do not trip it.
func classifyTransportError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) {
		return resilience.ErrorClassification{}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.ErrorClassification{
			RecordFailure: isBackendFailureStatus(statusErr.StatusCode),
		}
	}

	var decodeErr *decodeError
	var payloadErr *backendErrorPayload
	var tooLargeErr *responseTooLargeError
	if errors.As(err, &decodeErr) || errors.As(err, &payloadErr) || errors.As(err, &tooLargeErr) {
		return resilience.ErrorClassification{}
	}

	return resilience.ErrorClassification{
		Retryable:     true,
		RecordFailure: true,
	}
}

func isBackendFailureStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
