package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
	"github.com/billingkit/cielo-gateway/internal/domain/ports"
)

func newRecord(transactionID, tenantID uuid.UUID) *models.AuditRecord {
	amount := decimal.RequireFromString("25.00")
	return &models.AuditRecord{
		AccountID:            uuid.New(),
		PaymentID:            uuid.New(),
		PaymentTransactionID: transactionID,
		TenantID:             tenantID,
		TransactionType:      models.TypeAuthorize,
		Amount:               &amount,
		Currency:             "BRL",
		GatewayReference:     "pay-1",
		RawStatus:            "1",
		Outcome:              models.OutcomePending,
		Metadata:             map[string]string{"a": "1"},
	}
}

func TestAuditRepository_AppendAssignsIncreasingRecordIDs(t *testing.T) {
	repo := NewAuditRepository()
	ctx := context.Background()
	txnID, tenantID := uuid.New(), uuid.New()

	first := newRecord(txnID, tenantID)
	second := newRecord(txnID, tenantID)

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	assert.Greater(t, second.RecordID, first.RecordID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestAuditRepository_LatestReturnsHighestRecordID(t *testing.T) {
	repo := NewAuditRepository()
	ctx := context.Background()
	txnID, tenantID := uuid.New(), uuid.New()

	for _, rawStatus := range []string{"1", "2", "10"} {
		record := newRecord(txnID, tenantID)
		record.RawStatus = rawStatus
		require.NoError(t, repo.Append(ctx, record))
	}

	latest, err := repo.Latest(ctx, txnID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "10", latest.RawStatus)
	assert.Equal(t, int64(3), latest.RecordID)
}

func TestAuditRepository_LatestScopedByTenant(t *testing.T) {
	repo := NewAuditRepository()
	ctx := context.Background()
	txnID := uuid.New()
	tenantA, tenantB := uuid.New(), uuid.New()

	recordA := newRecord(txnID, tenantA)
	recordA.RawStatus = "2"
	require.NoError(t, repo.Append(ctx, recordA))

	recordB := newRecord(txnID, tenantB)
	recordB.RawStatus = "3"
	require.NoError(t, repo.Append(ctx, recordB))

	latest, err := repo.Latest(ctx, txnID, tenantA)
	require.NoError(t, err)
	assert.Equal(t, "2", latest.RawStatus)
}

func TestAuditRepository_LatestNotFound(t *testing.T) {
	repo := NewAuditRepository()

	_, err := repo.Latest(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestAuditRepository_UpdateMergesMetadata(t *testing.T) {
	repo := NewAuditRepository()
	ctx := context.Background()
	txnID, tenantID := uuid.New(), uuid.New()

	record := newRecord(txnID, tenantID)
	require.NoError(t, repo.Append(ctx, record))

	updated, err := repo.Update(ctx, txnID, tenantID, nil, nil, map[string]string{"b": "2"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, updated.Metadata)
	assert.Equal(t, record.RecordID, updated.RecordID, "update rewrites the same row")
	assert.Equal(t, "1", updated.RawStatus, "raw status untouched when not provided")
}

func TestAuditRepository_UpdateOverwritesConflictingKeys(t *testing.T) {
	repo := NewAuditRepository()
	ctx := context.Background()
	txnID, tenantID := uuid.New(), uuid.New()

	require.NoError(t, repo.Append(ctx, newRecord(txnID, tenantID)))

	updated, err := repo.Update(ctx, txnID, tenantID, nil, nil, map[string]string{"a": "9"})
	require.NoError(t, err)
	assert.Equal(t, "9", updated.Metadata["a"])
}

func TestAuditRepository_UpdateStatusAndOutcome(t *testing.T) {
	repo := NewAuditRepository()
	ctx := context.Background()
	txnID, tenantID := uuid.New(), uuid.New()

	require.NoError(t, repo.Append(ctx, newRecord(txnID, tenantID)))

	rawStatus := "2"
	outcome := models.OutcomeAuthorised
	updated, err := repo.Update(ctx, txnID, tenantID, &rawStatus, &outcome, nil)
	require.NoError(t, err)

	assert.Equal(t, "2", updated.RawStatus)
	assert.Equal(t, models.OutcomeAuthorised, updated.Outcome)

	latest, err := repo.Latest(ctx, txnID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAuthorised, latest.Outcome)
}

func TestAuditRepository_UpdateTargetsLatestRow(t *testing.T) {
	repo := NewAuditRepository()
	ctx := context.Background()
	txnID, tenantID := uuid.New(), uuid.New()

	first := newRecord(txnID, tenantID)
	require.NoError(t, repo.Append(ctx, first))
	second := newRecord(txnID, tenantID)
	second.Metadata = map[string]string{"x": "1"}
	require.NoError(t, repo.Append(ctx, second))

	updated, err := repo.Update(ctx, txnID, tenantID, nil, nil, map[string]string{"y": "2"})
	require.NoError(t, err)
	assert.Equal(t, second.RecordID, updated.RecordID)
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, updated.Metadata)

	// The earlier row is untouched
	all, err := repo.Latest(ctx, txnID, tenantID)
	require.NoError(t, err)
	assert.NotContains(t, all.Metadata, "a")
}

func TestAuditRepository_UpdateNotFound(t *testing.T) {
	repo := NewAuditRepository()

	_, err := repo.Update(context.Background(), uuid.New(), uuid.New(), nil, nil, map[string]string{"a": "1"})
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestAuditRepository_ReturnsCopies(t *testing.T) {
	repo := NewAuditRepository()
	ctx := context.Background()
	txnID, tenantID := uuid.New(), uuid.New()

	require.NoError(t, repo.Append(ctx, newRecord(txnID, tenantID)))

	latest, err := repo.Latest(ctx, txnID, tenantID)
	require.NoError(t, err)
	latest.Metadata["mutated"] = "yes"

	again, err := repo.Latest(ctx, txnID, tenantID)
	require.NoError(t, err)
	assert.NotContains(t, again.Metadata, "mutated")
}
