package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditRecord is one row of the append-only audit trail: one row per
// attempted gateway operation. Rows are never deleted by this layer; later
// attempts append new rows, and explicit updates merge metadata into the
// latest row for a (payment transaction id, tenant) pair.
type AuditRecord struct {
	// RecordID is assigned by the store on append and increases monotonically.
	// The latest row for a key pair is the one with the highest RecordID.
	RecordID int64

	AccountID            uuid.UUID
	PaymentID            uuid.UUID
	PaymentTransactionID uuid.UUID
	TenantID             uuid.UUID

	TransactionType TransactionType
	Amount          *decimal.Decimal
	Currency        string

	GatewayReference  string
	RawStatus         string
	Outcome           Outcome
	AuthorizationCode string
	ErrorCode         string
	ErrorMessage      string

	// Fraud signals passed through from the provider, never interpreted here.
	FraudAVSResult string
	FraudCVVResult string
	FraudService   string

	ExternalKey string
	Metadata    map[string]string

	CreatedAt time.Time
}

// MergeMetadata shallow-merges updates into existing; keys from updates win
// on conflict. Neither input map is mutated.
func MergeMetadata(existing, updates map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(updates))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	return merged
}
