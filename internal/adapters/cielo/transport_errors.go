package cielo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
)

// ProviderRequestError is raised by the sender when the provider answered a
// request with a structured error payload (HTTP 4xx with a JSON error array).
// Any payment id or status the provider managed to return is carried along so
// it can be recovered onto the Failure result.
type ProviderRequestError struct {
	HTTPStatus       int
	Errors           []models.ProviderError
	GatewayReference string
	RawStatus        string
}

func (e *ProviderRequestError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("provider rejected request (HTTP %d): %d %s", e.HTTPStatus, e.Errors[0].Code, e.Errors[0].Message)
	}
	return fmt.Sprintf("provider rejected request (HTTP %d)", e.HTTPStatus)
}

// InvalidRequestError marks a request the adapter refused to send because an
// argument could never be accepted by the provider.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// Message markers for malformed or truncated responses. The transport layer
// does not expose typed errors for these, so matching on the message is the
// best available signal.
var invalidResponseMarkers = []string{
	"unexpected end of file",
	"unexpected eof",
	"invalid http response",
	"malformed http",
	"bogus chunk size",
}

// ClassifyTransportError maps a transport or parsing failure to the closed
// failure-status taxonomy. It walks to the root cause and applies ordered
// heuristics; this is explicitly an approximation over an open set of faults,
// and anything unmatched lands in UNKNOWN_FAILURE. The function is total:
// it never panics and handles nil and unseen error types.
func ClassifyTransportError(err error) *models.GatewayFailure {
	if err == nil {
		return &models.GatewayFailure{
			Status:       models.FailureUnknown,
			CauseClass:   "nil",
			CauseMessage: "transport failure classified without a cause",
		}
	}

	root := rootCause(err)
	failure := &models.GatewayFailure{
		CauseClass:   fmt.Sprintf("%T", root),
		CauseMessage: root.Error(),
	}

	var providerErr *ProviderRequestError
	var invalidReq *InvalidRequestError
	var dnsErr *net.DNSError
	var jsonErr *json.SyntaxError
	var netErr net.Error

	switch {
	case errors.As(err, &providerErr):
		failure.Status = models.FailureResponseAboutInvalidRequest
		failure.Errors = providerErr.Errors
		failure.GatewayReference = providerErr.GatewayReference
		failure.RawStatus = providerErr.RawStatus

	case errors.As(err, &invalidReq):
		failure.Status = models.FailureResponseAboutInvalidRequest

	case errors.Is(err, syscall.ECONNREFUSED),
		errors.As(err, &dnsErr),
		containsMarker(err, "connection refused"),
		containsMarker(err, "no such host"):
		failure.Status = models.FailureRequestNotSend

	case errors.As(err, &netErr) && netErr.Timeout(),
		errors.Is(err, context.DeadlineExceeded):
		failure.Status = models.FailureResponseNotReceived

	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &jsonErr),
		hasInvalidResponseMarker(err):
		failure.Status = models.FailureResponseInvalid

	default:
		failure.Status = models.FailureUnknown
	}

	return failure
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func containsMarker(err error, marker string) bool {
	return strings.Contains(strings.ToLower(err.Error()), marker)
}

func hasInvalidResponseMarker(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range invalidResponseMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
