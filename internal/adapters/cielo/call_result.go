package cielo

import (
	"time"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
)

// CallResult is the discriminated Success/Failure envelope returned by every
// provider call. Exactly one variant is populated: a successful call always
// owns a non-nil decoded response, and a failed call never exposes one.
type CallResult[T any] struct {
	result   *T
	failure  *models.GatewayFailure
	duration time.Duration
}

// NewSuccessfulCall wraps a decoded response. A nil result is a programming
// error and is reported as an UNKNOWN_FAILURE rather than a half-populated
// success.
func NewSuccessfulCall[T any](result *T, duration time.Duration) *CallResult[T] {
	if result == nil {
		return NewFailedCall[T](&models.GatewayFailure{
			Status:       models.FailureUnknown,
			CauseClass:   "cielo.CallResult",
			CauseMessage: "successful call constructed without a response",
		}, duration)
	}
	return &CallResult[T]{result: result, duration: duration}
}

// NewFailedCall wraps a classified transport failure.
func NewFailedCall[T any](failure *models.GatewayFailure, duration time.Duration) *CallResult[T] {
	return &CallResult[T]{failure: failure, duration: duration}
}

// WellFormed reports whether a decodable provider response was received.
func (r *CallResult[T]) WellFormed() bool {
	return r.failure == nil
}

// Result returns the decoded response. The second return is false for
// failures, which never expose a payload.
func (r *CallResult[T]) Result() (*T, bool) {
	if r.result == nil {
		return nil, false
	}
	return r.result, true
}

// Failure returns the classified fault, or nil for successful calls.
func (r *CallResult[T]) Failure() *models.GatewayFailure {
	return r.failure
}

// Duration is the wall-clock time of the provider call, populated for both
// variants.
func (r *CallResult[T]) Duration() time.Duration {
	return r.duration
}
