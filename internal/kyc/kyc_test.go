package kyc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/models"
)

func TestSimulated_Verify_Success(t *testing.T) {
	verifier := NewSimulatedWithSource(0.9, func() float64 { return 0.1 }, logger.NewNoOpLogger())

	result, err := verifier.Verify(context.Background(), models.Customer{ID: "CUST001", Name: "Rahul Sharma"})
	require.NoError(t, err)

	assert.True(t, result.Verified)
	assert.Equal(t, "APPROVED", result.KYCStatus)
	assert.Contains(t, result.Message, "Rahul Sharma")
	assert.Contains(t, result.Message, "successful")
}

func TestSimulated_Verify_PendingDocuments(t *testing.T) {
	verifier := NewSimulatedWithSource(0.9, func() float64 { return 0.95 }, logger.NewNoOpLogger())

	result, err := verifier.Verify(context.Background(), models.Customer{ID: "CUST001", Name: "Rahul Sharma"})
	require.NoError(t, err)

	assert.False(t, result.Verified)
	assert.Equal(t, "PENDING_DOCUMENTS", result.KYCStatus)
	assert.Contains(t, result.Message, "Additional documents required")
}

func TestZohoVerifier_NoEmailOnFile(t *testing.T) {
	verifier := NewZohoVerifier(nil, logger.NewNoOpLogger())

	result, err := verifier.Verify(context.Background(), models.Customer{ID: "CUST001", Name: "Rahul Sharma"})
	require.NoError(t, err)

	assert.False(t, result.Verified)
	assert.Equal(t, "PENDING_DOCUMENTS", result.KYCStatus)
}
