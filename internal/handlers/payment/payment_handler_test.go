package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/billingkit/cielo-gateway/internal/adapters/memory"
	"github.com/billingkit/cielo-gateway/internal/domain/models"
	"github.com/billingkit/cielo-gateway/internal/domain/ports"
)

type stubGateway struct {
	createResult *models.PurchaseResult
	modifyResult *models.PaymentModificationResponse
	err          error

	lastTxType    models.TransactionType
	lastPaymentID string
}

func (s *stubGateway) Create(_ context.Context, txType models.TransactionType, intent models.PaymentIntent, _ models.Customer, _ *models.SplitSettlementData) (*models.PurchaseResult, error) {
	s.lastTxType = txType
	if s.err != nil {
		return nil, s.err
	}
	result := *s.createResult
	result.ExternalKey = intent.ExternalKey
	return &result, nil
}

func (s *stubGateway) Capture(_ context.Context, paymentID string, _ decimal.Decimal, _ string) (*models.PaymentModificationResponse, error) {
	s.lastTxType = models.TypeCapture
	s.lastPaymentID = paymentID
	return s.modifyResult, s.err
}

func (s *stubGateway) Cancel(_ context.Context, paymentID string) (*models.PaymentModificationResponse, error) {
	s.lastTxType = models.TypeCancel
	s.lastPaymentID = paymentID
	return s.modifyResult, s.err
}

func (s *stubGateway) Refund(_ context.Context, paymentID string, _ decimal.Decimal, _ string) (*models.PaymentModificationResponse, error) {
	s.lastTxType = models.TypeRefund
	s.lastPaymentID = paymentID
	return s.modifyResult, s.err
}

func (s *stubGateway) Query(_ context.Context, paymentID string, txType models.TransactionType) (*models.PaymentModificationResponse, error) {
	s.lastTxType = txType
	s.lastPaymentID = paymentID
	return s.modifyResult, s.err
}

var _ ports.PaymentGateway = (*stubGateway)(nil)

func newTestServer(gateway ports.PaymentGateway, audit ports.AuditRepository) *httptest.Server {
	mux := http.NewServeMux()
	NewHandler(gateway, audit, zap.NewNop()).Register(mux)
	return httptest.NewServer(mux)
}

func createBody(txnID, tenantID uuid.UUID) string {
	return fmt.Sprintf(`{
		"accountId": %q,
		"paymentId": %q,
		"transactionId": %q,
		"tenantId": %q,
		"externalKey": "order-1",
		"amount": "25.00",
		"currency": "BRL",
		"paymentMethod": {"type": "card", "number": "4111111111111111", "brand": "Visa"}
	}`, uuid.New(), uuid.New(), txnID, tenantID)
}

func TestHandler_AuthorizePersistsAuditRow(t *testing.T) {
	gateway := &stubGateway{
		createResult: &models.PurchaseResult{
			Outcome:           models.OutcomeAuthorised,
			GatewayReference:  "pay-1",
			RawStatus:         "2",
			AuthorizationCode: "057698",
			Metadata:          map[string]string{"tid": "tid-1"},
		},
	}
	audit := memory.NewAuditRepository()
	server := newTestServer(gateway, audit)
	defer server.Close()

	txnID, tenantID := uuid.New(), uuid.New()
	resp, err := http.Post(server.URL+"/v1/payments/authorize", "application/json",
		strings.NewReader(createBody(txnID, tenantID)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.TypeAuthorize, gateway.lastTxType)

	var body paymentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "AUTHORISED", body.Outcome)
	assert.Equal(t, "pay-1", body.GatewayReference)
	assert.NotZero(t, body.RecordID)

	record, err := audit.Latest(context.Background(), txnID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.TypeAuthorize, record.TransactionType)
	assert.Equal(t, models.OutcomeAuthorised, record.Outcome)
	assert.Equal(t, "pay-1", record.GatewayReference)
	assert.Equal(t, "057698", record.AuthorizationCode)
	assert.Equal(t, "order-1", record.ExternalKey)
	assert.Equal(t, "tid-1", record.Metadata["tid"])
}

func TestHandler_PurchaseUsesPurchaseType(t *testing.T) {
	gateway := &stubGateway{
		createResult: &models.PurchaseResult{Outcome: models.OutcomeAuthorised, GatewayReference: "pay-1"},
	}
	server := newTestServer(gateway, memory.NewAuditRepository())
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/payments/purchase", "application/json",
		strings.NewReader(createBody(uuid.New(), uuid.New())))
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.TypePurchase, gateway.lastTxType)
}

func TestHandler_AuthorizeTransportFailureStillAudited(t *testing.T) {
	failure := &models.GatewayFailure{
		Status:       models.FailureRequestNotSend,
		CauseMessage: "connection refused",
	}
	gateway := &stubGateway{
		createResult: &models.PurchaseResult{
			Metadata: failure.Metadata(),
			Failure:  failure,
		},
	}
	audit := memory.NewAuditRepository()
	server := newTestServer(gateway, audit)
	defer server.Close()

	txnID, tenantID := uuid.New(), uuid.New()
	resp, err := http.Post(server.URL+"/v1/payments/authorize", "application/json",
		strings.NewReader(createBody(txnID, tenantID)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body paymentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "REQUEST_NOT_SEND", body.FailureStatus)
	assert.Empty(t, body.Outcome)

	record, err := audit.Latest(context.Background(), txnID, tenantID)
	require.NoError(t, err)
	assert.Empty(t, record.GatewayReference)
	assert.Equal(t, "REQUEST_NOT_SEND", record.Metadata[models.MetaCallErrorStatus])
	assert.Equal(t, "connection refused", record.ErrorMessage)
}

func TestHandler_AuthorizeRejectsBadRequests(t *testing.T) {
	server := newTestServer(&stubGateway{}, memory.NewAuditRepository())
	defer server.Close()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing ids", `{"paymentMethod":{"type":"card"}}`},
		{
			"unknown method type",
			fmt.Sprintf(`{"accountId":%q,"paymentId":%q,"transactionId":%q,"tenantId":%q,"paymentMethod":{"type":"pix"}}`,
				uuid.New(), uuid.New(), uuid.New(), uuid.New()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/v1/payments/authorize", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func seedAuthorization(t *testing.T, audit ports.AuditRepository, txnID, tenantID uuid.UUID) {
	t.Helper()
	amount := decimal.RequireFromString("25.00")
	require.NoError(t, audit.Append(context.Background(), &models.AuditRecord{
		AccountID:            uuid.New(),
		PaymentID:            uuid.New(),
		PaymentTransactionID: txnID,
		TenantID:             tenantID,
		TransactionType:      models.TypeAuthorize,
		Amount:               &amount,
		Currency:             "BRL",
		GatewayReference:     "pay-1",
		RawStatus:            "1",
		Outcome:              models.OutcomePending,
		ExternalKey:          "order-1",
	}))
}

func TestHandler_CaptureUsesStoredGatewayReference(t *testing.T) {
	gateway := &stubGateway{
		modifyResult: &models.PaymentModificationResponse{
			Outcome:          models.OutcomeAuthorised,
			RawStatus:        "2",
			GatewayReference: "pay-1",
		},
	}
	audit := memory.NewAuditRepository()
	txnID, tenantID := uuid.New(), uuid.New()
	seedAuthorization(t, audit, txnID, tenantID)

	server := newTestServer(gateway, audit)
	defer server.Close()

	body := fmt.Sprintf(`{"tenantId":%q,"amount":"25.00","currency":"BRL"}`, tenantID)
	resp, err := http.Post(server.URL+"/v1/payments/"+txnID.String()+"/capture", "application/json",
		strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.TypeCapture, gateway.lastTxType)
	assert.Equal(t, "pay-1", gateway.lastPaymentID)

	record, err := audit.Latest(context.Background(), txnID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.TypeCapture, record.TransactionType)
	assert.Equal(t, "order-1", record.ExternalKey, "external key carried from the prior attempt")
}

func TestHandler_ModificationWithoutPriorAttempt(t *testing.T) {
	server := newTestServer(&stubGateway{}, memory.NewAuditRepository())
	defer server.Close()

	body := fmt.Sprintf(`{"tenantId":%q}`, uuid.New())
	resp, err := http.Post(server.URL+"/v1/payments/"+uuid.New().String()+"/cancel", "application/json",
		strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_RefundAppendsNewRow(t *testing.T) {
	gateway := &stubGateway{
		modifyResult: &models.PaymentModificationResponse{
			Outcome:          models.OutcomeAuthorised,
			RawStatus:        "11",
			GatewayReference: "pay-1",
		},
	}
	audit := memory.NewAuditRepository()
	txnID, tenantID := uuid.New(), uuid.New()
	seedAuthorization(t, audit, txnID, tenantID)

	server := newTestServer(gateway, audit)
	defer server.Close()

	body := fmt.Sprintf(`{"tenantId":%q,"amount":"5.00","currency":"BRL"}`, tenantID)
	resp, err := http.Post(server.URL+"/v1/payments/"+txnID.String()+"/refund", "application/json",
		strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.TypeRefund, gateway.lastTxType)

	record, err := audit.Latest(context.Background(), txnID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.TypeRefund, record.TransactionType)
	assert.Equal(t, "11", record.RawStatus)
	require.NotNil(t, record.Amount)
	assert.True(t, record.Amount.Equal(decimal.RequireFromString("5.00")))
}

func TestHandler_QueryRefreshesAuditRow(t *testing.T) {
	gateway := &stubGateway{
		modifyResult: &models.PaymentModificationResponse{
			Outcome:          models.OutcomeAuthorised,
			RawStatus:        "2",
			GatewayReference: "pay-1",
			Metadata:         map[string]string{"tid": "tid-1"},
		},
	}
	audit := memory.NewAuditRepository()
	txnID, tenantID := uuid.New(), uuid.New()
	seedAuthorization(t, audit, txnID, tenantID)

	server := newTestServer(gateway, audit)
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/payments/" + txnID.String() + "?tenantId=" + tenantID.String())
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.TypeAuthorize, gateway.lastTxType, "query classifies in the prior attempt's context")

	record, err := audit.Latest(context.Background(), txnID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "2", record.RawStatus)
	assert.Equal(t, models.OutcomeAuthorised, record.Outcome)
	assert.Equal(t, "tid-1", record.Metadata["tid"])
	assert.Equal(t, models.TypeAuthorize, record.TransactionType, "refresh rewrites the row in place")
}

func TestHandler_QueryTransportFailureLeavesAuditUntouched(t *testing.T) {
	gateway := &stubGateway{
		modifyResult: &models.PaymentModificationResponse{
			Failure: &models.GatewayFailure{Status: models.FailureResponseNotReceived},
		},
	}
	audit := memory.NewAuditRepository()
	txnID, tenantID := uuid.New(), uuid.New()
	seedAuthorization(t, audit, txnID, tenantID)

	server := newTestServer(gateway, audit)
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/payments/" + txnID.String() + "?tenantId=" + tenantID.String())
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body paymentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "RESPONSE_NOT_RECEIVED", body.FailureStatus)

	record, err := audit.Latest(context.Background(), txnID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "1", record.RawStatus)
	assert.Equal(t, models.OutcomePending, record.Outcome)
}
