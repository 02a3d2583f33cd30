package models

import "fmt"

// Outcome is the canonical result taxonomy used uniformly regardless of the
// provider's own status vocabulary. Values are derived by the outcome table
// in the provider adapter and never constructed ad hoc elsewhere.
type Outcome string

const (
	OutcomeAuthorised Outcome = "AUTHORISED"
	OutcomeReceived   Outcome = "RECEIVED"
	OutcomeRefused    Outcome = "REFUSED"
	OutcomePending    Outcome = "PENDING"
	OutcomeError      Outcome = "ERROR"
)

// ParseOutcome parses a canonical outcome name.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeAuthorised, OutcomeReceived, OutcomeRefused, OutcomePending, OutcomeError:
		return Outcome(s), nil
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

// FailureStatus classifies transport-level faults. It is a closed taxonomy
// distinct from Outcome, which only applies to well-formed provider responses.
type FailureStatus string

const (
	FailureRequestNotSend              FailureStatus = "REQUEST_NOT_SEND"
	FailureResponseNotReceived         FailureStatus = "RESPONSE_NOT_RECEIVED"
	FailureResponseInvalid             FailureStatus = "RESPONSE_INVALID"
	FailureResponseAboutInvalidRequest FailureStatus = "RESPONSE_ABOUT_INVALID_REQUEST"
	FailureUnknown                     FailureStatus = "UNKNOWN_FAILURE"
)
