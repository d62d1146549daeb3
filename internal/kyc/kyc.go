// Package kyc verifies customer identity before underwriting.
package kyc

import (
	"context"
	"fmt"
	"math/rand"

	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/models"
)

// Verifier is the KYC collaborator. Callers must treat the result as an
// opaque, possibly nondeterministic boundary.
type Verifier interface {
	Verify(ctx context.Context, customer models.Customer) (*models.VerificationResult, error)
}

// Simulated approves a configurable share of checks at random. It stands
// in for a real provider in demos and local development.
type Simulated struct {
	successRate float64
	source      func() float64
	logger      logger.Logger
}

func NewSimulated(successRate float64, log logger.Logger) *Simulated {
	return &Simulated{
		successRate: successRate,
		source:      rand.Float64,
		logger:      log.WithFields(map[string]interface{}{"component": "kyc-simulated"}),
	}
}

// NewSimulatedWithSource injects the randomness source, so tests can pin
// the outcome.
func NewSimulatedWithSource(successRate float64, source func() float64, log logger.Logger) *Simulated {
	v := NewSimulated(successRate, log)
	v.source = source
	return v
}

func (v *Simulated) Verify(_ context.Context, customer models.Customer) (*models.VerificationResult, error) {
	verified := v.source() < v.successRate

	result := &models.VerificationResult{
		Verified: verified,
	}
	if verified {
		result.KYCStatus = "APPROVED"
		result.Message = fmt.Sprintf("KYC verification successful for %s. All documents verified.", customer.Name)
	} else {
		result.KYCStatus = "PENDING_DOCUMENTS"
		result.Message = fmt.Sprintf("KYC verification pending. Additional documents required for %s.", customer.Name)
	}

	v.logger.Info("kyc check complete", map[string]interface{}{
		"customerId": customer.ID,
		"verified":   verified,
	})

	return result, nil
}
