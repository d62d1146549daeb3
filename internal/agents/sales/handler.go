// Package sales owns the loan-details capture stage.
package sales

import (
	"context"
	"fmt"

	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/extract"
	"instantcredit-agents/internal/letter"
	"instantcredit-agents/internal/models"
)

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"agent": "sales"}),
	}
}

// Process reads loan terms out of one message. A LoanRequest is emitted
// only when both amount and tenure appear in the same message; partial
// slots from earlier turns are not remembered.
func (h *Handler) Process(_ context.Context, userMessage string, state models.ConversationState) (*Response, error) {
	terms := extract.Loan(userMessage)

	switch {
	case terms.Amount != nil && terms.Tenure != nil:
		loanRequest := &models.LoanRequest{
			CustomerID: state.CustomerID,
			LoanAmount: *terms.Amount,
			Tenure:     *terms.Tenure,
		}

		h.logger.Info("loan request captured", map[string]interface{}{
			"customerId": state.CustomerID,
			"loanAmount": loanRequest.LoanAmount,
			"tenure":     loanRequest.Tenure,
		})

		return &Response{
			Message: fmt.Sprintf("Perfect! You're looking for a loan of ₹%s for %d year(s).\n\nLet me verify your details and check your eligibility. This will only take a moment...",
				letter.FormatINR(loanRequest.LoanAmount), loanRequest.Tenure),
			LoanRequest: loanRequest,
		}, nil

	case terms.Amount != nil:
		return &Response{
			Message: fmt.Sprintf("Great! A loan of ₹%s sounds good.\n\nNow, for how many years would you like to repay this loan? (Typically 1-7 years)",
				letter.FormatINR(*terms.Amount)),
		}, nil

	case terms.Tenure != nil:
		return &Response{
			Message: fmt.Sprintf("A %d-year tenure is a good choice for loan repayment.\n\nCould you please specify the loan amount you need? (e.g., 5 lakh, 10 lakh, etc.)",
				*terms.Tenure),
		}, nil

	default:
		return &Response{
			Message: "I didn't quite catch the loan details. Could you please provide:\n1. The loan amount you need (e.g., \"5 lakh\" or \"500000\")\n2. The tenure in years (e.g., \"3 years\" or \"5 years\")\n\nFor example: \"I need 5 lakh for 3 years\"",
		}, nil
	}
}
