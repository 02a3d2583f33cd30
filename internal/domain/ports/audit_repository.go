package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
)

// ErrNotFound is returned by Latest and Update when no audit row exists for
// the given (payment transaction id, tenant) pair.
var ErrNotFound = errors.New("audit record not found")

// AuditRepository is the append-only audit trail contract.
//
// Append never overwrites and does not enforce idempotency: duplicate rows
// for the same transaction id are legal across retries, and latest-row
// selection is what gives correctness.
type AuditRepository interface {
	// Append inserts one row and assigns its RecordID.
	Append(ctx context.Context, record *models.AuditRecord) error

	// Latest returns the row with the highest record id matching both keys,
	// or ErrNotFound.
	Latest(ctx context.Context, transactionID, tenantID uuid.UUID) (*models.AuditRecord, error)

	// Update loads the latest row for the key pair, shallow-merges metadata
	// into it (new keys win), optionally overwrites raw status and canonical
	// outcome, and writes back to the same row. Returns the updated row, or
	// ErrNotFound without writing when no prior row exists.
	Update(ctx context.Context, transactionID, tenantID uuid.UUID, rawStatus *string, outcome *models.Outcome, metadata map[string]string) (*models.AuditRecord, error)
}
