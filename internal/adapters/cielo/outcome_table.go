package cielo

import (
	"fmt"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
)

// pendingApprovalStatus is returned by the provider for delayed-authorization
// flows such as 3-D Secure challenges. For authorize and capture calls it is
// treated as an authorization regardless of any table entry.
const pendingApprovalStatus = "PENDING_APPROVAL"

// ErrUnknownStatus signals a raw provider status with no table entry and no
// canonical outcome name. This is a configuration fault, not a business
// refusal: defaulting silently would misclassify money-moving outcomes.
type ErrUnknownStatus struct {
	RawStatus string
}

func (e *ErrUnknownStatus) Error() string {
	return fmt.Sprintf("unknown provider status %q", e.RawStatus)
}

// OutcomeTable maps raw provider status codes to canonical outcomes. It is
// built once during process initialization and read-only thereafter; pass it
// by reference wherever classification is needed.
type OutcomeTable struct {
	byStatus map[string]models.Outcome
}

// NewOutcomeTable builds the table for the provider's documented status
// codes. Several codes collapse into one outcome: captured, voided and
// refunded payments all count as AUTHORISED from the billing platform's
// point of view, with the raw status preserved alongside.
func NewOutcomeTable() *OutcomeTable {
	return NewOutcomeTableFrom(map[string]models.Outcome{
		"2":  models.OutcomeAuthorised, // payment confirmed
		"10": models.OutcomeAuthorised, // voided
		"11": models.OutcomeAuthorised, // refunded
		"20": models.OutcomeReceived,   // scheduled
		"3":  models.OutcomeRefused,    // denied
		"1":  models.OutcomePending,    // authorized, pending capture
		"12": models.OutcomePending,    // pending
		"0":  models.OutcomeError,      // not finished
		"13": models.OutcomeError,      // aborted
	})
}

// NewOutcomeTableFrom builds a table from an explicit mapping. The input map
// is copied; the table never mutates after construction.
func NewOutcomeTableFrom(mapping map[string]models.Outcome) *OutcomeTable {
	byStatus := make(map[string]models.Outcome, len(mapping))
	for status, outcome := range mapping {
		byStatus[status] = outcome
	}
	return &OutcomeTable{byStatus: byStatus}
}

// Outcome classifies a raw provider status in the context of a transaction
// type.
//
// An empty rawStatus always yields ERROR: the provider answered without a
// status and no further lookup is meaningful. The PENDING_APPROVAL override
// for authorize/capture applies before the table so the delayed-authorization
// flow wins even if the table maps that status elsewhere. A status absent
// from the table that spells a canonical outcome name is accepted verbatim;
// anything else is an *ErrUnknownStatus, raised to the caller.
func (t *OutcomeTable) Outcome(rawStatus string, txType models.TransactionType) (models.Outcome, error) {
	if rawStatus == "" {
		return models.OutcomeError, nil
	}

	if rawStatus == pendingApprovalStatus &&
		(txType == models.TypeAuthorize || txType == models.TypeCapture) {
		return models.OutcomeAuthorised, nil
	}

	if outcome, ok := t.byStatus[rawStatus]; ok {
		return outcome, nil
	}

	if outcome, err := models.ParseOutcome(rawStatus); err == nil {
		return outcome, nil
	}

	return "", &ErrUnknownStatus{RawStatus: rawStatus}
}
