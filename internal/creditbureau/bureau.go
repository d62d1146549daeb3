// Package creditbureau exposes the mock bureau's credit profile lookup.
// History and default-risk tiers are derived from score bands.
package creditbureau

import (
	"context"

	"instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/common/metrics"
	"instantcredit-agents/internal/directory"
	"instantcredit-agents/internal/models"
)

type Service struct {
	directory directory.Directory
	logger    logger.Logger
}

func NewService(dir directory.Directory, log logger.Logger) *Service {
	return &Service{
		directory: dir,
		logger:    log.WithFields(map[string]interface{}{"component": "credit-bureau"}),
	}
}

// Score returns the bureau view of a customer's credit standing.
func (s *Service) Score(ctx context.Context, customerID string) (*models.CreditProfile, error) {
	if customerID == "" {
		return nil, errors.NewValidationError("customerId is required")
	}

	customer, err := s.directory.CustomerByID(ctx, customerID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		metrics.CollaboratorFailures.WithLabelValues("credit-bureau").Inc()
		return nil, errors.NewCreditBureauError(err)
	}

	history, risk := tiersForScore(customer.CreditScore)

	return &models.CreditProfile{
		CustomerID:    customerID,
		CreditScore:   customer.CreditScore,
		CreditHistory: history,
		DefaultRisk:   risk,
	}, nil
}

func tiersForScore(score int) (history, risk string) {
	switch {
	case score >= 800:
		return "Excellent", "Very Low"
	case score >= 750:
		return "Good", "Low"
	case score >= 700:
		return "Fair", "Medium"
	case score >= 650:
		return "Poor", "High"
	default:
		return "Very Poor", "Very High"
	}
}
