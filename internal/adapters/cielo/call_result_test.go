package cielo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billingkit/cielo-gateway/internal/domain/models"
)

func TestCallResult_Success(t *testing.T) {
	status := 2
	sale := &Sale{Payment: &Payment{PaymentID: "pay-1", Status: &status}}

	result := NewSuccessfulCall(sale, 120*time.Millisecond)

	assert.True(t, result.WellFormed())
	assert.Nil(t, result.Failure())
	assert.Equal(t, 120*time.Millisecond, result.Duration())

	got, ok := result.Result()
	require.True(t, ok)
	assert.Equal(t, "pay-1", got.Payment.PaymentID)
}

func TestCallResult_Failure(t *testing.T) {
	failure := &models.GatewayFailure{Status: models.FailureRequestNotSend}

	result := NewFailedCall[Sale](failure, 5*time.Millisecond)

	assert.False(t, result.WellFormed())
	assert.Equal(t, failure, result.Failure())

	got, ok := result.Result()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCallResult_NilSuccessDegradesToFailure(t *testing.T) {
	result := NewSuccessfulCall[Sale](nil, time.Millisecond)

	assert.False(t, result.WellFormed())
	require.NotNil(t, result.Failure())
	assert.Equal(t, models.FailureUnknown, result.Failure().Status)
}
