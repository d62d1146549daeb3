package verification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/directory"
	"instantcredit-agents/internal/kyc"
	"instantcredit-agents/internal/models"
)

type stubVerifier struct {
	result *models.VerificationResult
	err    error
}

func (s *stubVerifier) Verify(_ context.Context, _ models.Customer) (*models.VerificationResult, error) {
	return s.result, s.err
}

type failingDirectory struct{}

func (failingDirectory) CustomerByID(_ context.Context, _ string) (*models.Customer, error) {
	return nil, commonerrors.NewDirectoryLookupError(assert.AnError)
}

func TestProcess_MissingCustomerID(t *testing.T) {
	h := NewHandler(directory.NewInMemory(), &stubVerifier{}, logger.NewNoOpLogger())

	resp, err := h.Process(context.Background(), "ok", models.ConversationState{Stage: models.StageVerification})
	require.NoError(t, err)

	assert.False(t, resp.Verified)
	assert.True(t, resp.Retry)
	assert.Contains(t, resp.Message, "customer ID")
}

func TestProcess_VerifiedAdvances(t *testing.T) {
	verifier := &stubVerifier{result: &models.VerificationResult{
		Verified:  true,
		KYCStatus: "APPROVED",
		Message:   "KYC verification successful for Rahul Sharma. All documents verified.",
	}}
	h := NewHandler(directory.NewInMemory(), verifier, logger.NewNoOpLogger())

	resp, err := h.Process(context.Background(), "go ahead", models.ConversationState{
		CustomerID: "CUST001",
		Stage:      models.StageVerification,
	})
	require.NoError(t, err)

	assert.True(t, resp.Verified)
	assert.False(t, resp.Retry)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "APPROVED", resp.Result.KYCStatus)
	assert.Contains(t, resp.Message, "KYC is complete")
}

func TestProcess_PendingDocumentsRetries(t *testing.T) {
	verifier := &stubVerifier{result: &models.VerificationResult{
		Verified:  false,
		KYCStatus: "PENDING_DOCUMENTS",
		Message:   "KYC verification pending. Additional documents required for Rahul Sharma.",
	}}
	h := NewHandler(directory.NewInMemory(), verifier, logger.NewNoOpLogger())

	resp, err := h.Process(context.Background(), "go ahead", models.ConversationState{
		CustomerID: "CUST001",
		Stage:      models.StageVerification,
	})
	require.NoError(t, err)

	assert.False(t, resp.Verified)
	assert.True(t, resp.Retry)
	assert.Contains(t, resp.Message, "upload the required documents")
}

func TestProcess_CollaboratorFailureBecomesRetry(t *testing.T) {
	verifier := &stubVerifier{err: commonerrors.NewKYCProviderError(assert.AnError)}
	h := NewHandler(directory.NewInMemory(), verifier, logger.NewNoOpLogger())

	resp, err := h.Process(context.Background(), "go ahead", models.ConversationState{
		CustomerID: "CUST001",
		Stage:      models.StageVerification,
	})
	require.NoError(t, err)

	assert.False(t, resp.Verified)
	assert.True(t, resp.Retry)
	assert.Contains(t, resp.Message, "try again")
}

func TestProcess_DirectoryFailureBecomesRetry(t *testing.T) {
	h := NewHandler(failingDirectory{}, &stubVerifier{}, logger.NewNoOpLogger())

	resp, err := h.Process(context.Background(), "go ahead", models.ConversationState{
		CustomerID: "CUST001",
		Stage:      models.StageVerification,
	})
	require.NoError(t, err)

	assert.False(t, resp.Verified)
	assert.True(t, resp.Retry)
}

var _ kyc.Verifier = (*stubVerifier)(nil)
