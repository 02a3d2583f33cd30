package models

import "strconv"

// Metadata keys used to surface transport-failure details on results and
// audit rows when no well-formed provider response was received.
const (
	MetaCallErrorStatus  = "gatewayCallErrorStatus"
	MetaExceptionClass   = "exceptionClass"
	MetaExceptionMessage = "exceptionMessage"
	MetaErrorCode        = "gatewayErrorCode"
	MetaErrorMessage     = "gatewayErrorMessage"
)

// GatewayFailure describes a classified transport-level fault. It is attached
// to results instead of being raised; callers inspect it to apply retry policy.
type GatewayFailure struct {
	Status FailureStatus

	// CauseClass and CauseMessage identify the root cause that was classified.
	CauseClass   string
	CauseMessage string

	// Errors is the provider's structured error payload, when one was decoded
	// from a response about an invalid request.
	Errors []ProviderError

	// GatewayReference and RawStatus are partial identifiers recovered from
	// the cause, when the provider managed to return them.
	GatewayReference string
	RawStatus        string
}

// ProviderError is one entry of the provider's structured error payload.
type ProviderError struct {
	Code    int    `json:"Code"`
	Message string `json:"Message"`
}

// Metadata flattens the failure into audit-row metadata.
func (f *GatewayFailure) Metadata() map[string]string {
	md := map[string]string{
		MetaCallErrorStatus:  string(f.Status),
		MetaExceptionClass:   f.CauseClass,
		MetaExceptionMessage: f.CauseMessage,
	}
	if len(f.Errors) > 0 {
		md[MetaErrorCode] = strconv.Itoa(f.Errors[0].Code)
		md[MetaErrorMessage] = f.Errors[0].Message
	}
	return md
}

// PurchaseResult is the outcome of an authorize/purchase call. Exactly one of
// Outcome (well-formed response) or Failure (classified transport fault) is
// meaningful; Outcome is empty when Failure is set.
type PurchaseResult struct {
	Outcome           Outcome
	GatewayReference  string
	RawStatus         string
	AuthorizationCode string
	ExternalKey       string
	Metadata          map[string]string
	Failure           *GatewayFailure
}

// Succeeded reports whether a well-formed provider response was received.
// A REFUSED or ERROR outcome still counts as a received response.
func (r *PurchaseResult) Succeeded() bool {
	return r.Failure == nil
}

// PaymentModificationResponse is the outcome of a capture, cancel, refund or
// query call against an existing gateway reference.
type PaymentModificationResponse struct {
	Outcome          Outcome
	RawStatus        string
	GatewayReference string
	Metadata         map[string]string
	Failure          *GatewayFailure
}

// Succeeded reports whether a well-formed provider response was received.
func (r *PaymentModificationResponse) Succeeded() bool {
	return r.Failure == nil
}
