package cielo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
	"github.com/billingkit/cielo-gateway/internal/domain/ports"
)

// requestSender performs the HTTP exchange with the provider and converts
// every outcome, good or bad, into a CallResult. It never returns a Go error:
// transport faults are classified into the result's failure variant.
type requestSender struct {
	client ports.HTTPClient
	config *Config
	logger *zap.Logger
}

func newRequestSender(client ports.HTTPClient, config *Config, logger *zap.Logger) *requestSender {
	return &requestSender{
		client: client,
		config: config,
		logger: logger,
	}
}

// createSale posts a new sale (authorize or purchase).
func (s *requestSender) createSale(ctx context.Context, sale *Sale) *CallResult[Sale] {
	url := s.config.RequestBaseURL() + "/1/sales/"
	return s.do(ctx, http.MethodPost, url, sale)
}

// capture settles a previously authorized sale, partially when an amount is
// given.
func (s *requestSender) capture(ctx context.Context, paymentID string, amount *int64) *CallResult[Sale] {
	url := s.config.RequestBaseURL() + "/1/sales/" + paymentID + "/capture"
	if amount != nil {
		url += "?amount=" + strconv.FormatInt(*amount, 10)
	}
	return s.do(ctx, http.MethodPut, url, nil)
}

// void cancels a sale. With an amount it is a partial void, which is also how
// the provider models refunds of captured sales.
func (s *requestSender) void(ctx context.Context, paymentID string, amount *int64) *CallResult[Sale] {
	url := s.config.RequestBaseURL() + "/1/sales/" + paymentID + "/void"
	if amount != nil {
		url += "?amount=" + strconv.FormatInt(*amount, 10)
	}
	return s.do(ctx, http.MethodPut, url, nil)
}

// query fetches the current state of a sale from the query endpoint.
func (s *requestSender) query(ctx context.Context, paymentID string) *CallResult[Sale] {
	url := s.config.QueryBaseURL() + "/1/sales/" + paymentID
	return s.do(ctx, http.MethodGet, url, nil)
}

func (s *requestSender) do(ctx context.Context, method, url string, body *Sale) *CallResult[Sale] {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return s.fail(err, start)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return s.fail(err, start)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("MerchantId", s.config.MerchantID)
	req.Header.Set("MerchantKey", s.config.MerchantKey)
	req.Header.Set("RequestId", uuid.NewString())

	resp, err := s.client.Do(req)
	if err != nil {
		return s.fail(err, start)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return s.fail(err, start)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return s.fail(providerError(resp.StatusCode, payload), start)
	}

	var sale Sale
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &sale); err != nil {
			return s.fail(err, start)
		}
	}
	return NewSuccessfulCall(&sale, time.Since(start))
}

func (s *requestSender) fail(err error, start time.Time) *CallResult[Sale] {
	failure := ClassifyTransportError(err)
	s.logger.Warn("provider call failed",
		zap.String("failure_status", string(failure.Status)),
		zap.String("cause", failure.CauseMessage),
	)
	return NewFailedCall[Sale](failure, time.Since(start))
}

// providerError decodes a non-2xx response body into a structured rejection.
// The provider answers invalid requests with a JSON array of code/message
// pairs; some rejections instead echo a sale envelope whose payment carries
// the ids and return message.
func providerError(statusCode int, payload []byte) *ProviderRequestError {
	reqErr := &ProviderRequestError{HTTPStatus: statusCode}

	var errs []models.ProviderError
	if err := json.Unmarshal(payload, &errs); err == nil && len(errs) > 0 {
		reqErr.Errors = errs
		return reqErr
	}

	var sale Sale
	if err := json.Unmarshal(payload, &sale); err == nil &&
		(sale.Payment != nil || sale.Status != nil || sale.ReturnMessage != "") {
		reqErr.RawStatus = sale.RawStatus()
		returnCode, returnMessage := sale.ReturnCode, sale.ReturnMessage
		if sale.Payment != nil {
			reqErr.GatewayReference = sale.Payment.PaymentID
			if sale.Payment.ReturnMessage != "" {
				returnCode, returnMessage = sale.Payment.ReturnCode, sale.Payment.ReturnMessage
			}
		}
		if returnMessage != "" {
			code, _ := strconv.Atoi(returnCode)
			reqErr.Errors = []models.ProviderError{{Code: code, Message: returnMessage}}
		}
		return reqErr
	}

	if len(payload) > 0 {
		reqErr.Errors = []models.ProviderError{{Message: fmt.Sprintf("unparseable error body: %.200s", payload)}}
	}
	return reqErr
}
