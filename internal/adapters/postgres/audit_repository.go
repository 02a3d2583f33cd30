package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
	"github.com/billingkit/cielo-gateway/internal/domain/ports"
	"github.com/billingkit/cielo-gateway/pkg/observability"
)

const auditColumns = `record_id, account_id, payment_id, payment_transaction_id, tenant_id,
	transaction_type, amount, currency, gateway_reference, raw_status, outcome,
	authorization_code, error_code, error_message, fraud_avs_result, fraud_cvv_result,
	fraud_service, external_key, metadata, created_at`

// AuditRepository implements ports.AuditRepository over the gateway_responses
// table. Rows are append-only: every gateway attempt inserts a new row, and
// the row with the highest record id per (payment transaction, tenant) pair
// is the current truth.
type AuditRepository struct {
	db     *DBExecutor
	logger *zap.Logger
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

// NewAuditRepository creates the audit repository over an existing executor.
func NewAuditRepository(db *DBExecutor, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

// Append inserts one audit row and backfills the assigned record id and
// creation timestamp.
func (r *AuditRepository) Append(ctx context.Context, record *models.AuditRecord) error {
	amount, err := nullNumeric(record.Amount)
	if err != nil {
		return err
	}
	metadata, err := encodeMetadata(record.Metadata)
	if err != nil {
		return err
	}

	err = r.db.GetDB().QueryRow(ctx, `
		INSERT INTO gateway_responses (
			account_id, payment_id, payment_transaction_id, tenant_id,
			transaction_type, amount, currency, gateway_reference, raw_status, outcome,
			authorization_code, error_code, error_message, fraud_avs_result, fraud_cvv_result,
			fraud_service, external_key, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING record_id, created_at`,
		record.AccountID,
		record.PaymentID,
		record.PaymentTransactionID,
		record.TenantID,
		string(record.TransactionType),
		amount,
		nullText(record.Currency),
		nullText(record.GatewayReference),
		nullText(record.RawStatus),
		nullText(string(record.Outcome)),
		nullText(record.AuthorizationCode),
		nullText(record.ErrorCode),
		nullText(record.ErrorMessage),
		nullText(record.FraudAVSResult),
		nullText(record.FraudCVVResult),
		nullText(record.FraudService),
		nullText(record.ExternalKey),
		metadata,
	).Scan(&record.RecordID, &record.CreatedAt)

	observability.ObserveAuditWrite("append", err)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}

	r.logger.Debug("audit record appended",
		zap.Int64("record_id", record.RecordID),
		zap.String("transaction_type", string(record.TransactionType)),
		zap.String("payment_transaction_id", record.PaymentTransactionID.String()),
	)
	return nil
}

// Latest returns the highest-record-id row for the key pair.
func (r *AuditRepository) Latest(ctx context.Context, transactionID, tenantID uuid.UUID) (*models.AuditRecord, error) {
	row := r.db.GetDB().QueryRow(ctx, `
		SELECT `+auditColumns+`
		FROM gateway_responses
		WHERE payment_transaction_id = $1 AND tenant_id = $2
		ORDER BY record_id DESC
		LIMIT 1`,
		transactionID, tenantID,
	)
	record, err := scanAuditRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load latest audit record: %w", err)
	}
	return record, nil
}

// Update rewrites the latest row for the key pair in place: metadata is
// shallow-merged with new keys winning, and raw status and outcome are
// overwritten only when provided. The row is locked for the duration so
// concurrent updates serialize instead of losing merges.
func (r *AuditRepository) Update(ctx context.Context, transactionID, tenantID uuid.UUID, rawStatus *string, outcome *models.Outcome, metadata map[string]string) (*models.AuditRecord, error) {
	var updated *models.AuditRecord

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT `+auditColumns+`
			FROM gateway_responses
			WHERE payment_transaction_id = $1 AND tenant_id = $2
			ORDER BY record_id DESC
			LIMIT 1
			FOR UPDATE`,
			transactionID, tenantID,
		)
		record, err := scanAuditRecord(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load latest audit record: %w", err)
		}

		record.Metadata = models.MergeMetadata(record.Metadata, metadata)
		if rawStatus != nil {
			record.RawStatus = *rawStatus
		}
		if outcome != nil {
			record.Outcome = *outcome
		}

		encoded, err := encodeMetadata(record.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE gateway_responses
			SET raw_status = $2, outcome = $3, metadata = $4
			WHERE record_id = $1`,
			record.RecordID,
			nullText(record.RawStatus),
			nullText(string(record.Outcome)),
			encoded,
		); err != nil {
			return fmt.Errorf("update audit record: %w", err)
		}

		updated = record
		return nil
	})

	observability.ObserveAuditWrite("update", err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func scanAuditRecord(row pgx.Row) (*models.AuditRecord, error) {
	var (
		record          models.AuditRecord
		transactionType string
		amount          pgtype.Numeric
		currency        pgtype.Text
		gatewayRef      pgtype.Text
		rawStatus       pgtype.Text
		outcome         pgtype.Text
		authCode        pgtype.Text
		errorCode       pgtype.Text
		errorMessage    pgtype.Text
		fraudAVS        pgtype.Text
		fraudCVV        pgtype.Text
		fraudService    pgtype.Text
		externalKey     pgtype.Text
		metadata        []byte
	)

	if err := row.Scan(
		&record.RecordID,
		&record.AccountID,
		&record.PaymentID,
		&record.PaymentTransactionID,
		&record.TenantID,
		&transactionType,
		&amount,
		&currency,
		&gatewayRef,
		&rawStatus,
		&outcome,
		&authCode,
		&errorCode,
		&errorMessage,
		&fraudAVS,
		&fraudCVV,
		&fraudService,
		&externalKey,
		&metadata,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}

	dec, err := numericValue(amount)
	if err != nil {
		return nil, err
	}

	record.TransactionType = models.TransactionType(transactionType)
	record.Amount = dec
	record.Currency = textValue(currency)
	record.GatewayReference = textValue(gatewayRef)
	record.RawStatus = textValue(rawStatus)
	record.Outcome = models.Outcome(textValue(outcome))
	record.AuthorizationCode = textValue(authCode)
	record.ErrorCode = textValue(errorCode)
	record.ErrorMessage = textValue(errorMessage)
	record.FraudAVSResult = textValue(fraudAVS)
	record.FraudCVVResult = textValue(fraudCVV)
	record.FraudService = textValue(fraudService)
	record.ExternalKey = textValue(externalKey)
	record.Metadata = decodeMetadata(metadata)
	return &record, nil
}
