// Package memory provides in-process adapter implementations used by tests
// and local development. They honor the same contracts as the production
// adapters, including latest-row selection by record id.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
	"github.com/billingkit/cielo-gateway/internal/domain/ports"
)

// AuditRepository is a mutex-guarded, append-only audit store.
type AuditRepository struct {
	mu      sync.Mutex
	nextID  int64
	records []*models.AuditRecord
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

// NewAuditRepository returns an empty store.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{nextID: 1}
}

// Append stores a copy of the record and assigns its RecordID.
func (r *AuditRepository) Append(_ context.Context, record *models.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.RecordID = r.nextID
	r.nextID++
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	stored := cloneRecord(record)
	r.records = append(r.records, stored)
	return nil
}

// Latest returns a copy of the highest-record-id row for the key pair.
func (r *AuditRepository) Latest(_ context.Context, transactionID, tenantID uuid.UUID) (*models.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	latest := r.latestLocked(transactionID, tenantID)
	if latest == nil {
		return nil, ports.ErrNotFound
	}
	return cloneRecord(latest), nil
}

// Update merges into the latest row for the key pair, in place.
func (r *AuditRepository) Update(_ context.Context, transactionID, tenantID uuid.UUID, rawStatus *string, outcome *models.Outcome, metadata map[string]string) (*models.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	latest := r.latestLocked(transactionID, tenantID)
	if latest == nil {
		return nil, ports.ErrNotFound
	}

	latest.Metadata = models.MergeMetadata(latest.Metadata, metadata)
	if rawStatus != nil {
		latest.RawStatus = *rawStatus
	}
	if outcome != nil {
		latest.Outcome = *outcome
	}
	return cloneRecord(latest), nil
}

func (r *AuditRepository) latestLocked(transactionID, tenantID uuid.UUID) *models.AuditRecord {
	var latest *models.AuditRecord
	for _, record := range r.records {
		if record.PaymentTransactionID != transactionID || record.TenantID != tenantID {
			continue
		}
		if latest == nil || record.RecordID > latest.RecordID {
			latest = record
		}
	}
	return latest
}

func cloneRecord(record *models.AuditRecord) *models.AuditRecord {
	clone := *record
	if record.Metadata != nil {
		clone.Metadata = make(map[string]string, len(record.Metadata))
		for k, v := range record.Metadata {
			clone.Metadata[k] = v
		}
	}
	if record.Amount != nil {
		amount := *record.Amount
		clone.Amount = &amount
	}
	return &clone
}
