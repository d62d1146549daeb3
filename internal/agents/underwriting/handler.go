// Package underwriting owns the loan evaluation stage, wrapping the
// decision engine with conversational handling.
package underwriting

import (
	"context"
	"strings"

	"instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/common/metrics"
	"instantcredit-agents/internal/directory"
	"instantcredit-agents/internal/extract"
	"instantcredit-agents/internal/models"
	uw "instantcredit-agents/internal/underwriting"
)

type Handler struct {
	directory directory.Directory
	engine    *uw.Engine
	logger    logger.Logger
}

func NewHandler(dir directory.Directory, engine *uw.Engine, log logger.Logger) *Handler {
	return &Handler{
		directory: dir,
		engine:    engine,
		logger:    log.WithFields(map[string]interface{}{"agent": "underwriting"}),
	}
}

// Process evaluates the captured loan request, reading an optional
// salary figure out of the current message. It branches on the engine's
// tagged outcome.
func (h *Handler) Process(ctx context.Context, userMessage string, state models.ConversationState) (*Response, error) {
	if state.LoanRequest == nil || state.CustomerID == "" {
		return nil, errors.NewStagePreconditionError("underwriting requires a customer and a captured loan request")
	}

	customer, err := h.directory.CustomerByID(ctx, state.CustomerID)
	if err != nil {
		if errors.IsValidation(err) || errors.IsNotFound(err) {
			return nil, err
		}
		metrics.CollaboratorFailures.WithLabelValues("customer-directory").Inc()
		h.logger.Warn("customer lookup failed", map[string]interface{}{
			"customerId": state.CustomerID,
			"error":      err.Error(),
		})
		return retryResponse(), nil
	}

	result, err := h.engine.Evaluate(*customer, uw.Request{
		CustomerID: state.CustomerID,
		LoanAmount: state.LoanRequest.LoanAmount,
		Tenure:     state.LoanRequest.Tenure,
		Salary:     extract.Salary(userMessage),
	})
	if err != nil {
		// Validation failures mean the captured request itself is bad;
		// surface them so the dispatcher can recover the conversation.
		return nil, err
	}

	switch result.Outcome {
	case models.OutcomeApproved:
		return &Response{
			Message:       "✓ Great news! Your loan has been approved!\n\n" + result.Reason + "\n\n" + strings.Join(result.Conditions, "\n"),
			Approved:      true,
			NeedsMoreInfo: false,
			Result:        result,
		}, nil

	case models.OutcomeNeedsSalaryInfo:
		return &Response{
			Message:       result.Reason + "\n\nCould you please provide your annual salary so I can verify your EMI capacity?",
			Approved:      false,
			NeedsMoreInfo: true,
			Result:        result,
		}, nil

	default:
		return &Response{
			Message:       "✗ Unfortunately, we're unable to approve your loan at this time.\n\n" + result.Reason + "\n\n" + strings.Join(result.Conditions, "\n"),
			Approved:      false,
			NeedsMoreInfo: false,
			Result:        result,
		}, nil
	}
}

func retryResponse() *Response {
	return &Response{
		Message:       "I encountered an issue evaluating your loan. Please try again.",
		Approved:      false,
		NeedsMoreInfo: true,
	}
}
