package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
	"github.com/billingkit/cielo-gateway/internal/domain/ports"
	"github.com/billingkit/cielo-gateway/pkg/observability"
)

// Handler exposes the payment operations over HTTP. Every gateway attempt,
// including transport failures, is appended to the audit trail before the
// response is written.
type Handler struct {
	gateway ports.PaymentGateway
	audit   ports.AuditRepository
	logger  *zap.Logger
}

// NewHandler creates a new payment handler
func NewHandler(gateway ports.PaymentGateway, audit ports.AuditRepository, logger *zap.Logger) *Handler {
	return &Handler{
		gateway: gateway,
		audit:   audit,
		logger:  logger,
	}
}

// Register mounts the payment routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/payments/authorize", h.handleCreate(models.TypeAuthorize))
	mux.HandleFunc("POST /v1/payments/purchase", h.handleCreate(models.TypePurchase))
	mux.HandleFunc("POST /v1/payments/{transactionID}/capture", h.handleCapture)
	mux.HandleFunc("POST /v1/payments/{transactionID}/refund", h.handleRefund)
	mux.HandleFunc("POST /v1/payments/{transactionID}/cancel", h.handleCancel)
	mux.HandleFunc("GET /v1/payments/{transactionID}", h.handleQuery)
}

type addressRequest struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type paymentMethodRequest struct {
	Type           string `json:"type"` // card, token, recurring
	Number         string `json:"number"`
	Holder         string `json:"holder"`
	ExpirationDate string `json:"expirationDate"`
	SecurityCode   string `json:"securityCode"`
	Brand          string `json:"brand"`
	Token          string `json:"token"`
	SaveCard       bool   `json:"saveCard"`
}

type customerRequest struct {
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Email           string          `json:"email"`
	DateOfBirth     string          `json:"dateOfBirth"` // YYYY-MM-DD
	TaxID           string          `json:"taxId"`
	BillingAddress  *addressRequest `json:"billingAddress"`
	ShippingAddress *addressRequest `json:"shippingAddress"`
}

type splitItemRequest struct {
	MerchantID string `json:"merchantId"`
	Amount     int64  `json:"amount"`
}

type createRequest struct {
	AccountID     string                `json:"accountId"`
	PaymentID     string                `json:"paymentId"`
	TransactionID string                `json:"transactionId"`
	TenantID      string                `json:"tenantId"`
	ExternalKey   string                `json:"externalKey"`
	Amount        string                `json:"amount"`
	Currency      string                `json:"currency"`
	Installments  int                   `json:"installments"`
	PaymentMethod *paymentMethodRequest `json:"paymentMethod"`
	Customer      *customerRequest      `json:"customer"`
	Split         []splitItemRequest    `json:"split"`
}

type modifyRequest struct {
	AccountID string `json:"accountId"`
	PaymentID string `json:"paymentId"`
	TenantID  string `json:"tenantId"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

type paymentResponse struct {
	RecordID          int64             `json:"recordId,omitempty"`
	TransactionID     string            `json:"transactionId"`
	Outcome           string            `json:"outcome,omitempty"`
	GatewayReference  string            `json:"gatewayReference,omitempty"`
	RawStatus         string            `json:"rawStatus,omitempty"`
	AuthorizationCode string            `json:"authorizationCode,omitempty"`
	ErrorCode         string            `json:"errorCode,omitempty"`
	ErrorMessage      string            `json:"errorMessage,omitempty"`
	FailureStatus     string            `json:"failureStatus,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleCreate(txType models.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}

		ids, err := parseIdentifiers(req.AccountID, req.PaymentID, req.TransactionID, req.TenantID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if req.PaymentMethod == nil {
			writeError(w, http.StatusBadRequest, errors.New("paymentMethod is required"))
			return
		}
		method, err := toPaymentMethod(req.PaymentMethod)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		intent := models.PaymentIntent{
			ExternalKey:  req.ExternalKey,
			Currency:     req.Currency,
			Installments: req.Installments,
			Method:       method,
		}
		if req.Amount != "" {
			amount, err := decimal.NewFromString(req.Amount)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid amount: %w", err))
				return
			}
			intent.Amount = &amount
		}

		customer, err := toCustomer(req.Customer)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		result, err := h.gateway.Create(r.Context(), txType, intent, customer, toSplit(req.Split))
		if err != nil {
			h.logger.Error("gateway create failed",
				zap.String("transaction_type", string(txType)),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		if result.Failure != nil {
			observability.RecordTransportFailure(string(txType), string(result.Failure.Status))
		} else {
			var minor int64
			if intent.Amount != nil {
				minor = models.MinorUnits(*intent.Amount)
			}
			observability.RecordPaymentOutcome(string(txType), string(result.Outcome), intent.Currency, minor)
		}

		record := &models.AuditRecord{
			AccountID:            ids.accountID,
			PaymentID:            ids.paymentID,
			PaymentTransactionID: ids.transactionID,
			TenantID:             ids.tenantID,
			TransactionType:      txType,
			Amount:               intent.Amount,
			Currency:             intent.Currency,
			GatewayReference:     result.GatewayReference,
			RawStatus:            result.RawStatus,
			Outcome:              result.Outcome,
			AuthorizationCode:    result.AuthorizationCode,
			ExternalKey:          req.ExternalKey,
			Metadata:             result.Metadata,
		}
		if result.Failure != nil {
			record.ErrorMessage = result.Failure.CauseMessage
		}
		if err := h.audit.Append(r.Context(), record); err != nil {
			h.logger.Error("audit append failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, paymentResponse{
			RecordID:          record.RecordID,
			TransactionID:     ids.transactionID.String(),
			Outcome:           string(result.Outcome),
			GatewayReference:  result.GatewayReference,
			RawStatus:         result.RawStatus,
			AuthorizationCode: result.AuthorizationCode,
			ErrorMessage:      record.ErrorMessage,
			FailureStatus:     failureStatus(result.Failure),
			Metadata:          result.Metadata,
		})
	}
}

func (h *Handler) handleCapture(w http.ResponseWriter, r *http.Request) {
	h.handleModification(w, r, models.TypeCapture, true)
}

func (h *Handler) handleRefund(w http.ResponseWriter, r *http.Request) {
	h.handleModification(w, r, models.TypeRefund, true)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.handleModification(w, r, models.TypeCancel, false)
}

func (h *Handler) handleModification(w http.ResponseWriter, r *http.Request, txType models.TransactionType, withAmount bool) {
	transactionID, err := uuid.Parse(r.PathValue("transactionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid transaction id: %w", err))
		return
	}

	var req modifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid tenant id: %w", err))
		return
	}

	var amount decimal.Decimal
	if withAmount && req.Amount != "" {
		amount, err = decimal.NewFromString(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid amount: %w", err))
			return
		}
	}

	prior, err := h.audit.Latest(r.Context(), transactionID, tenantID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("no prior attempt for transaction %s", transactionID))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if prior.GatewayReference == "" {
		writeError(w, http.StatusConflict, fmt.Errorf("transaction %s has no gateway reference", transactionID))
		return
	}

	var result *models.PaymentModificationResponse
	switch txType {
	case models.TypeCapture:
		result, err = h.gateway.Capture(r.Context(), prior.GatewayReference, amount, req.Currency)
	case models.TypeRefund:
		result, err = h.gateway.Refund(r.Context(), prior.GatewayReference, amount, req.Currency)
	case models.TypeCancel:
		result, err = h.gateway.Cancel(r.Context(), prior.GatewayReference)
	default:
		err = fmt.Errorf("unsupported modification type %s", txType)
	}
	if err != nil {
		h.logger.Error("gateway modification failed",
			zap.String("transaction_type", string(txType)),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if result.Failure != nil {
		observability.RecordTransportFailure(string(txType), string(result.Failure.Status))
	} else {
		var minor int64
		if withAmount && req.Amount != "" {
			minor = models.MinorUnits(amount)
		}
		observability.RecordPaymentOutcome(string(txType), string(result.Outcome), req.Currency, minor)
	}

	record := &models.AuditRecord{
		AccountID:            prior.AccountID,
		PaymentID:            prior.PaymentID,
		PaymentTransactionID: transactionID,
		TenantID:             tenantID,
		TransactionType:      txType,
		Currency:             req.Currency,
		GatewayReference:     result.GatewayReference,
		RawStatus:            result.RawStatus,
		Outcome:              result.Outcome,
		ExternalKey:          prior.ExternalKey,
		Metadata:             result.Metadata,
	}
	if withAmount && req.Amount != "" {
		record.Amount = &amount
	}
	if result.Failure != nil {
		record.ErrorMessage = result.Failure.CauseMessage
	}
	if err := h.audit.Append(r.Context(), record); err != nil {
		h.logger.Error("audit append failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, paymentResponse{
		RecordID:         record.RecordID,
		TransactionID:    transactionID.String(),
		Outcome:          string(result.Outcome),
		GatewayReference: result.GatewayReference,
		RawStatus:        result.RawStatus,
		ErrorMessage:     record.ErrorMessage,
		FailureStatus:    failureStatus(result.Failure),
		Metadata:         result.Metadata,
	})
}

// handleQuery fetches the provider's current view of a transaction and
// refreshes the latest audit row with the provider's answer.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	transactionID, err := uuid.Parse(r.PathValue("transactionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid transaction id: %w", err))
		return
	}
	tenantID, err := uuid.Parse(r.URL.Query().Get("tenantId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid tenant id: %w", err))
		return
	}

	prior, err := h.audit.Latest(r.Context(), transactionID, tenantID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("no prior attempt for transaction %s", transactionID))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if prior.GatewayReference == "" {
		writeError(w, http.StatusConflict, fmt.Errorf("transaction %s has no gateway reference", transactionID))
		return
	}

	txType := prior.TransactionType
	if txType == "" {
		txType = models.TypeQuery
	}
	result, err := h.gateway.Query(r.Context(), prior.GatewayReference, txType)
	if err != nil {
		h.logger.Error("gateway query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	record := prior
	if result.Succeeded() {
		record, err = h.audit.Update(r.Context(), transactionID, tenantID, &result.RawStatus, &result.Outcome, result.Metadata)
		if err != nil {
			h.logger.Error("audit refresh failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, paymentResponse{
		RecordID:          record.RecordID,
		TransactionID:     transactionID.String(),
		Outcome:           string(result.Outcome),
		GatewayReference:  result.GatewayReference,
		RawStatus:         result.RawStatus,
		AuthorizationCode: record.AuthorizationCode,
		FailureStatus:     failureStatus(result.Failure),
		Metadata:          record.Metadata,
	})
}

type identifiers struct {
	accountID     uuid.UUID
	paymentID     uuid.UUID
	transactionID uuid.UUID
	tenantID      uuid.UUID
}

func parseIdentifiers(accountID, paymentID, transactionID, tenantID string) (identifiers, error) {
	var ids identifiers
	var err error
	if ids.accountID, err = uuid.Parse(accountID); err != nil {
		return ids, fmt.Errorf("invalid account id: %w", err)
	}
	if ids.paymentID, err = uuid.Parse(paymentID); err != nil {
		return ids, fmt.Errorf("invalid payment id: %w", err)
	}
	if ids.transactionID, err = uuid.Parse(transactionID); err != nil {
		return ids, fmt.Errorf("invalid transaction id: %w", err)
	}
	if ids.tenantID, err = uuid.Parse(tenantID); err != nil {
		return ids, fmt.Errorf("invalid tenant id: %w", err)
	}
	return ids, nil
}

func toPaymentMethod(req *paymentMethodRequest) (models.PaymentMethod, error) {
	switch req.Type {
	case "card":
		return models.CardPaymentMethod{
			Number:         req.Number,
			Holder:         req.Holder,
			ExpirationDate: req.ExpirationDate,
			SecurityCode:   req.SecurityCode,
			Brand:          req.Brand,
			Token:          req.Token,
			SaveCard:       req.SaveCard,
		}, nil
	case "token":
		return models.TokenPaymentMethod{
			Token:        req.Token,
			Brand:        req.Brand,
			SecurityCode: req.SecurityCode,
		}, nil
	case "recurring":
		return models.RecurringPaymentMethod{
			Token: req.Token,
			Brand: req.Brand,
		}, nil
	}
	return nil, fmt.Errorf("unsupported payment method type %q", req.Type)
}

func toCustomer(req *customerRequest) (models.Customer, error) {
	if req == nil {
		return models.Customer{}, nil
	}
	customer := models.Customer{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		TaxID:           req.TaxID,
		BillingAddress:  toAddress(req.BillingAddress),
		ShippingAddress: toAddress(req.ShippingAddress),
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return customer, fmt.Errorf("invalid dateOfBirth: %w", err)
		}
		customer.DateOfBirth = &dob
	}
	return customer, nil
}

func toAddress(req *addressRequest) *models.Address {
	if req == nil {
		return nil
	}
	return &models.Address{
		Street:     req.Street,
		Number:     req.Number,
		Complement: req.Complement,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}
}

func toSplit(items []splitItemRequest) *models.SplitSettlementData {
	if len(items) == 0 {
		return nil
	}
	split := &models.SplitSettlementData{}
	for _, item := range items {
		split.Splits = append(split.Splits, models.SplitItem{
			MerchantID: item.MerchantID,
			Amount:     item.Amount,
		})
	}
	return split
}

func failureStatus(failure *models.GatewayFailure) string {
	if failure == nil {
		return ""
	}
	return string(failure.Status)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
