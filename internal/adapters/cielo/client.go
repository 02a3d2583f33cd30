package cielo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
	"github.com/billingkit/cielo-gateway/internal/domain/ports"
	"github.com/billingkit/cielo-gateway/pkg/observability"
)

const resultOK = "ok"

// Client is the provider-facing payment gateway. It is stateless: every call
// builds a request from its arguments, performs one HTTP exchange and
// classifies the response. Transport faults come back inside the result; the
// error return is reserved for configuration faults such as an unmapped
// provider status.
type Client struct {
	config  *Config
	builder *RequestBuilder
	sender  *requestSender
	table   *OutcomeTable
	logger  *zap.Logger
}

var _ ports.PaymentGateway = (*Client)(nil)

// NewClient validates the configuration and wires the gateway. The outcome
// table is shared by reference; callers typically build one table at startup
// and hand it to every component that classifies provider statuses.
func NewClient(config *Config, httpClient ports.HTTPClient, table *OutcomeTable, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gateway config: %w", err)
	}
	return &Client{
		config:  config,
		builder: NewRequestBuilder(),
		sender:  newRequestSender(httpClient, config, logger),
		table:   table,
		logger:  logger,
	}, nil
}

// Create performs an authorize (capture deferred) or purchase (auto-capture)
// call for a new sale.
func (c *Client) Create(ctx context.Context, txType models.TransactionType, intent models.PaymentIntent, customer models.Customer, split *models.SplitSettlementData) (*models.PurchaseResult, error) {
	if txType != models.TypeAuthorize && txType != models.TypePurchase {
		return nil, fmt.Errorf("create does not support transaction type %s", txType)
	}

	sale := c.builder.Build(txType, intent, customer, split)
	call := c.sender.createSale(ctx, sale)

	if !call.WellFormed() {
		failure := call.Failure()
		observability.ObserveGatewayCall(string(txType), string(failure.Status), call.Duration())
		return &models.PurchaseResult{
			GatewayReference: failure.GatewayReference,
			RawStatus:        failure.RawStatus,
			ExternalKey:      intent.ExternalKey,
			Metadata:         failure.Metadata(),
			Failure:          failure,
		}, nil
	}

	resp, _ := call.Result()
	rawStatus := resp.RawStatus()
	outcome, err := c.table.Outcome(rawStatus, txType)
	if err != nil {
		return nil, err
	}
	observability.ObserveGatewayCall(string(txType), resultOK, call.Duration())

	result := &models.PurchaseResult{
		Outcome:     outcome,
		RawStatus:   rawStatus,
		ExternalKey: intent.ExternalKey,
		Metadata:    responseMetadata(resp),
	}
	if resp.Payment != nil {
		result.GatewayReference = resp.Payment.PaymentID
		result.AuthorizationCode = resp.Payment.AuthorizationCode
	}

	c.logger.Info("sale created",
		zap.String("transaction_type", string(txType)),
		zap.String("gateway_reference", result.GatewayReference),
		zap.String("outcome", string(outcome)),
	)
	return result, nil
}

// Capture settles a previously authorized sale.
func (c *Client) Capture(ctx context.Context, paymentID string, amount decimal.Decimal, currency string) (*models.PaymentModificationResponse, error) {
	minor := minorAmount(amount, currency)
	call := c.sender.capture(ctx, paymentID, minor)
	return c.modificationResult(models.TypeCapture, paymentID, call)
}

// Cancel voids an authorized sale in full.
func (c *Client) Cancel(ctx context.Context, paymentID string) (*models.PaymentModificationResponse, error) {
	call := c.sender.void(ctx, paymentID, nil)
	return c.modificationResult(models.TypeCancel, paymentID, call)
}

// Refund returns funds for a captured sale, modeled provider-side as a
// partial void for the refunded amount.
func (c *Client) Refund(ctx context.Context, paymentID string, amount decimal.Decimal, currency string) (*models.PaymentModificationResponse, error) {
	minor := minorAmount(amount, currency)
	call := c.sender.void(ctx, paymentID, minor)
	return c.modificationResult(models.TypeRefund, paymentID, call)
}

// Query fetches the sale's current provider state. The transaction type
// contextualizes status classification but does not change the request.
func (c *Client) Query(ctx context.Context, paymentID string, txType models.TransactionType) (*models.PaymentModificationResponse, error) {
	call := c.sender.query(ctx, paymentID)
	return c.modificationResult(txType, paymentID, call)
}

func (c *Client) modificationResult(txType models.TransactionType, paymentID string, call *CallResult[Sale]) (*models.PaymentModificationResponse, error) {
	if !call.WellFormed() {
		failure := call.Failure()
		observability.ObserveGatewayCall(string(txType), string(failure.Status), call.Duration())
		resp := &models.PaymentModificationResponse{
			RawStatus: failure.RawStatus,
			Metadata:  failure.Metadata(),
			Failure:   failure,
		}
		// A transport failure forfeits any claim about the sale; the reference
		// is reported only if the provider's rejection itself carried one.
		resp.GatewayReference = failure.GatewayReference
		return resp, nil
	}

	sale, _ := call.Result()
	rawStatus := sale.RawStatus()
	outcome, err := c.table.Outcome(rawStatus, txType)
	if err != nil {
		return nil, err
	}
	observability.ObserveGatewayCall(string(txType), resultOK, call.Duration())

	resp := &models.PaymentModificationResponse{
		Outcome:          outcome,
		RawStatus:        rawStatus,
		GatewayReference: paymentID,
		Metadata:         responseMetadata(sale),
	}
	if sale.Payment != nil && sale.Payment.PaymentID != "" {
		resp.GatewayReference = sale.Payment.PaymentID
	}

	c.logger.Info("sale modified",
		zap.String("transaction_type", string(txType)),
		zap.String("gateway_reference", resp.GatewayReference),
		zap.String("outcome", string(outcome)),
	)
	return resp, nil
}

// minorAmount converts to provider minor units, or nil when amount or
// currency is missing so the request omits the amount entirely.
func minorAmount(amount decimal.Decimal, currency string) *int64 {
	if currency == "" || amount.IsZero() {
		return nil
	}
	minor := models.MinorUnits(amount)
	return &minor
}

func responseMetadata(sale *Sale) map[string]string {
	if sale == nil {
		return nil
	}
	proofOfSale, tid := sale.ProofOfSale, sale.TID
	returnCode, returnMessage := sale.ReturnCode, sale.ReturnMessage
	if p := sale.Payment; p != nil {
		if p.ProofOfSale != "" {
			proofOfSale = p.ProofOfSale
		}
		if p.TID != "" {
			tid = p.TID
		}
		if p.ReturnCode != "" {
			returnCode = p.ReturnCode
		}
		if p.ReturnMessage != "" {
			returnMessage = p.ReturnMessage
		}
	}

	md := make(map[string]string, 4)
	if proofOfSale != "" {
		md["proofOfSale"] = proofOfSale
	}
	if tid != "" {
		md["tid"] = tid
	}
	if returnCode != "" {
		md["returnCode"] = returnCode
	}
	if returnMessage != "" {
		md["returnMessage"] = returnMessage
	}
	if len(md) == 0 {
		return nil
	}
	return md
}
