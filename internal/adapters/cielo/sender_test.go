package cielo

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
)

type httpClientFunc func(*http.Request) (*http.Response, error)

func (f httpClientFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.MerchantID = "merchant-id"
	cfg.MerchantKey = "merchant-key"
	return cfg
}

func newTestSender(client httpClientFunc) *requestSender {
	return newRequestSender(client, testConfig(), zap.NewNop())
}

func TestRequestSender_CreateSale(t *testing.T) {
	var captured *http.Request
	sender := newTestSender(func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusCreated, `{"Payment":{"PaymentId":"pay-1","Status":1,"AuthorizationCode":"057698"}}`), nil
	})

	result := sender.createSale(context.Background(), &Sale{MerchantOrderID: "order-1"})

	require.True(t, result.WellFormed())
	sale, ok := result.Result()
	require.True(t, ok)
	assert.Equal(t, "pay-1", sale.Payment.PaymentID)
	assert.Equal(t, "1", sale.Payment.RawStatus())
	assert.Equal(t, "057698", sale.Payment.AuthorizationCode)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "https://apisandbox.cieloecommerce.cielo.com.br/1/sales/", captured.URL.String())
	assert.Equal(t, "merchant-id", captured.Header.Get("MerchantId"))
	assert.Equal(t, "merchant-key", captured.Header.Get("MerchantKey"))
	assert.NotEmpty(t, captured.Header.Get("RequestId"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
}

func TestRequestSender_CaptureURL(t *testing.T) {
	var captured *http.Request
	sender := newTestSender(func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusOK, `{"Status":2}`), nil
	})

	amount := int64(1500)
	result := sender.capture(context.Background(), "pay-1", &amount)

	require.True(t, result.WellFormed())
	assert.Equal(t, http.MethodPut, captured.Method)
	assert.Equal(t, "https://apisandbox.cieloecommerce.cielo.com.br/1/sales/pay-1/capture?amount=1500", captured.URL.String())
}

func TestRequestSender_VoidURLs(t *testing.T) {
	var captured *http.Request
	sender := newTestSender(func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusOK, `{"Status":10}`), nil
	})

	// Full void carries no amount
	result := sender.void(context.Background(), "pay-1", nil)
	require.True(t, result.WellFormed())
	assert.Equal(t, "https://apisandbox.cieloecommerce.cielo.com.br/1/sales/pay-1/void", captured.URL.String())

	// Partial void (refund) carries the amount
	amount := int64(500)
	result = sender.void(context.Background(), "pay-1", &amount)
	require.True(t, result.WellFormed())
	assert.Equal(t, "https://apisandbox.cieloecommerce.cielo.com.br/1/sales/pay-1/void?amount=500", captured.URL.String())
}

func TestRequestSender_QueryUsesQueryHost(t *testing.T) {
	var captured *http.Request
	sender := newTestSender(func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusOK, `{"Payment":{"PaymentId":"pay-1","Status":2}}`), nil
	})

	result := sender.query(context.Background(), "pay-1")

	require.True(t, result.WellFormed())
	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "https://apiquerysandbox.cieloecommerce.cielo.com.br/1/sales/pay-1", captured.URL.String())
}

func TestRequestSender_ProviderRejection(t *testing.T) {
	sender := newTestSender(func(*http.Request) (*http.Response, error) {
		return newResponse(http.StatusBadRequest, `[{"Code":126,"Message":"Credit Card Expiration Date is invalid"}]`), nil
	})

	result := sender.createSale(context.Background(), &Sale{})

	require.False(t, result.WellFormed())
	failure := result.Failure()
	assert.Equal(t, models.FailureResponseAboutInvalidRequest, failure.Status)
	require.Len(t, failure.Errors, 1)
	assert.Equal(t, 126, failure.Errors[0].Code)
	assert.Equal(t, "Credit Card Expiration Date is invalid", failure.Errors[0].Message)
}

func TestRequestSender_RejectionWithSaleEnvelope(t *testing.T) {
	sender := newTestSender(func(*http.Request) (*http.Response, error) {
		return newResponse(http.StatusUnprocessableEntity,
			`{"Payment":{"PaymentId":"pay-9","Status":3,"ReturnCode":"57","ReturnMessage":"Card Expired"}}`), nil
	})

	result := sender.createSale(context.Background(), &Sale{})

	require.False(t, result.WellFormed())
	failure := result.Failure()
	assert.Equal(t, models.FailureResponseAboutInvalidRequest, failure.Status)
	assert.Equal(t, "pay-9", failure.GatewayReference)
	assert.Equal(t, "3", failure.RawStatus)
	require.Len(t, failure.Errors, 1)
	assert.Equal(t, "Card Expired", failure.Errors[0].Message)
}

func TestRequestSender_ConnectionRefused(t *testing.T) {
	sender := newTestSender(func(*http.Request) (*http.Response, error) {
		return nil, &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}
	})

	result := sender.createSale(context.Background(), &Sale{})

	require.False(t, result.WellFormed())
	assert.Equal(t, models.FailureRequestNotSend, result.Failure().Status)
}

func TestRequestSender_Timeout(t *testing.T) {
	sender := newTestSender(func(*http.Request) (*http.Response, error) {
		return nil, timeoutError{}
	})

	result := sender.query(context.Background(), "pay-1")

	require.False(t, result.WellFormed())
	assert.Equal(t, models.FailureResponseNotReceived, result.Failure().Status)
}

func TestRequestSender_MalformedResponseBody(t *testing.T) {
	sender := newTestSender(func(*http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, `{"Payment": not-json`), nil
	})

	result := sender.createSale(context.Background(), &Sale{})

	require.False(t, result.WellFormed())
	assert.Equal(t, models.FailureResponseInvalid, result.Failure().Status)
}

func TestRequestSender_EmptyBodyIsWellFormed(t *testing.T) {
	sender := newTestSender(func(*http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, ``), nil
	})

	result := sender.void(context.Background(), "pay-1", nil)

	require.True(t, result.WellFormed())
	sale, ok := result.Result()
	require.True(t, ok)
	assert.Equal(t, "", sale.RawStatus())
}
