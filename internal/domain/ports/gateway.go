package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
)

// PaymentGateway is the synchronous facade over the card-payment processor.
//
// Every operation is a stateless request/response forwarder: the provider's
// own transaction lifecycle is the source of truth and no local state machine
// is enforced. Transport faults are classified and embedded in the returned
// result, never raised; the error return is reserved for configuration and
// programming faults (an unrecognized provider status), which fail fast.
type PaymentGateway interface {
	// Create submits an authorization (txType AUTHORIZE) or an auto-capture
	// purchase (txType PURCHASE).
	Create(ctx context.Context, txType models.TransactionType, intent models.PaymentIntent, customer models.Customer, split *models.SplitSettlementData) (*models.PurchaseResult, error)

	// Capture settles a previously authorized payment, possibly partially.
	Capture(ctx context.Context, paymentID string, amount decimal.Decimal, currency string) (*models.PaymentModificationResponse, error)

	// Cancel voids a payment in full.
	Cancel(ctx context.Context, paymentID string) (*models.PaymentModificationResponse, error)

	// Refund returns funds for a captured payment, possibly partially.
	Refund(ctx context.Context, paymentID string, amount decimal.Decimal, currency string) (*models.PaymentModificationResponse, error)

	// Query fetches the provider's current view of a payment.
	Query(ctx context.Context, paymentID string, txType models.TransactionType) (*models.PaymentModificationResponse, error)
}
