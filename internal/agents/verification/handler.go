// Package verification owns the KYC stage.
package verification

import (
	"context"

	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/common/metrics"
	"instantcredit-agents/internal/directory"
	"instantcredit-agents/internal/kyc"
	"instantcredit-agents/internal/models"
)

type Handler struct {
	directory directory.Directory
	verifier  kyc.Verifier
	logger    logger.Logger
}

func NewHandler(dir directory.Directory, verifier kyc.Verifier, log logger.Logger) *Handler {
	return &Handler{
		directory: dir,
		verifier:  verifier,
		logger:    log.WithFields(map[string]interface{}{"agent": "verification"}),
	}
}

// Process runs the KYC check for the bound customer. Collaborator
// failures become retry prompts, never hard failures from this layer.
func (h *Handler) Process(ctx context.Context, _ string, state models.ConversationState) (*Response, error) {
	if state.CustomerID == "" {
		return &Response{
			Message:  "I need your customer ID to proceed with verification.",
			Verified: false,
			Retry:    true,
		}, nil
	}

	customer, err := h.directory.CustomerByID(ctx, state.CustomerID)
	if err != nil {
		metrics.CollaboratorFailures.WithLabelValues("customer-directory").Inc()
		h.logger.Warn("customer lookup failed", map[string]interface{}{
			"customerId": state.CustomerID,
			"error":      err.Error(),
		})
		return retryResponse(), nil
	}

	result, err := h.verifier.Verify(ctx, *customer)
	if err != nil {
		h.logger.Warn("kyc check failed", map[string]interface{}{
			"customerId": state.CustomerID,
			"error":      err.Error(),
		})
		return retryResponse(), nil
	}

	if result.Verified {
		return &Response{
			Message:  "✓ " + result.Message + "\n\nYour KYC is complete. Let me now check your credit profile and loan eligibility...",
			Verified: true,
			Retry:    false,
			Result:   result,
		}, nil
	}

	return &Response{
		Message:  "⚠ " + result.Message + "\n\nPlease upload the required documents to proceed.",
		Verified: false,
		Retry:    true,
		Result:   result,
	}, nil
}

func retryResponse() *Response {
	return &Response{
		Message:  "I encountered an issue verifying your details. Please try again.",
		Verified: false,
		Retry:    true,
	}
}
