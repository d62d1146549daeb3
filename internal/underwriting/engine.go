// Package underwriting implements the loan decision engine.
package underwriting

import (
	"fmt"
	"math"

	"instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/common/metrics"
	"instantcredit-agents/internal/models"
)

// Request carries everything the engine needs for one evaluation.
// Salary is optional; rule 2 asks for it when missing.
type Request struct {
	CustomerID string
	LoanAmount float64
	Tenure     int // years
	Salary     *float64
}

// Engine maps a credit profile and a loan request to a decision.
//
// Rules are evaluated in fixed priority order:
//
//  1. amount within the pre-approved limit: instant approval
//  2. amount within twice the limit: salary-gated approval, EMI must stay
//     at or below 50% of monthly salary
//  3. amount beyond twice the limit, or credit score below 700: rejection
//     (the amount check wins when both apply)
type Engine struct {
	logger logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{
		logger: log.WithFields(map[string]interface{}{"component": "underwriting-engine"}),
	}
}

// MaxTenureYears caps the repayment horizon; beyond it the EMI power
// term overflows to +Inf and the installment degrades to NaN.
const MaxTenureYears = 30

// Evaluate runs the decision rules. A non-positive amount or an
// out-of-range tenure is a validation error raised before any rule
// runs; the EMI formula misbehaves otherwise.
func (e *Engine) Evaluate(customer models.Customer, req Request) (*models.UnderwritingResult, error) {
	if req.LoanAmount <= 0 {
		return nil, errors.NewValidationError(fmt.Sprintf("loanAmount must be positive, got %v", req.LoanAmount))
	}
	if req.Tenure <= 0 {
		return nil, errors.NewValidationError(fmt.Sprintf("tenure must be positive, got %d", req.Tenure))
	}
	if req.Tenure > MaxTenureYears {
		return nil, errors.NewValidationError(fmt.Sprintf("tenure must be at most %d years, got %d", MaxTenureYears, req.Tenure))
	}

	result := e.decide(customer, req)

	metrics.UnderwritingDecisions.WithLabelValues(string(result.Outcome)).Inc()
	e.logger.Info("underwriting decision", map[string]interface{}{
		"customerId": req.CustomerID,
		"loanAmount": req.LoanAmount,
		"tenure":     req.Tenure,
		"outcome":    result.Outcome,
	})

	return result, nil
}

func (e *Engine) decide(customer models.Customer, req Request) *models.UnderwritingResult {
	switch {
	// Rule 1: within the pre-approved limit, instant approval.
	case req.LoanAmount <= customer.PreApprovedLimit:
		rate := 10.5
		if customer.CreditScore >= 750 {
			rate = 8.5
		}
		emi := MonthlyEMI(req.LoanAmount, rate, req.Tenure)

		return &models.UnderwritingResult{
			Outcome:         models.OutcomeApproved,
			Approved:        true,
			Reason:          "Loan amount within pre-approved limit. Instant approval granted.",
			SanctionAmount:  req.LoanAmount,
			InterestRatePct: rate,
			MonthlyEMI:      emi,
			Conditions: []string{
				fmt.Sprintf("Interest Rate: %g%% per annum", rate),
				fmt.Sprintf("Monthly EMI: ₹%d", int64(math.Round(emi))),
				fmt.Sprintf("Tenure: %d years", req.Tenure),
			},
		}

	// Rule 2: up to twice the limit needs a salary check.
	case req.LoanAmount <= customer.PreApprovedLimit*2:
		if req.Salary == nil {
			return &models.UnderwritingResult{
				Outcome:  models.OutcomeNeedsSalaryInfo,
				Approved: false,
				Reason:   "Loan amount exceeds pre-approved limit. Salary slip verification required.",
				Conditions: []string{
					"Please provide your latest salary slip for verification",
				},
			}
		}

		rate := 11.5
		if customer.CreditScore >= 750 {
			rate = 9.5
		}
		emi := MonthlyEMI(req.LoanAmount, rate, req.Tenure)
		monthlySalary := *req.Salary / 12
		ratio := (emi / monthlySalary) * 100

		if ratio <= 50 {
			return &models.UnderwritingResult{
				Outcome:          models.OutcomeApproved,
				Approved:         true,
				Reason:           fmt.Sprintf("Loan approved. EMI (%.1f%%) is within acceptable limits (≤50%% of salary).", ratio),
				SanctionAmount:   req.LoanAmount,
				InterestRatePct:  rate,
				MonthlyEMI:       emi,
				EMIToSalaryRatio: ratio,
				Conditions: []string{
					fmt.Sprintf("Interest Rate: %g%% per annum", rate),
					fmt.Sprintf("Monthly EMI: ₹%d", int64(math.Round(emi))),
					fmt.Sprintf("EMI to Salary Ratio: %.1f%%", ratio),
					fmt.Sprintf("Tenure: %d years", req.Tenure),
				},
			}
		}

		return &models.UnderwritingResult{
			Outcome:          models.OutcomeRejected,
			Approved:         false,
			Reason:           fmt.Sprintf("Loan rejected. EMI (%.1f%%) exceeds acceptable limit (50%% of salary).", ratio),
			EMIToSalaryRatio: ratio,
			Conditions: []string{
				"Consider reducing loan amount or increasing tenure",
			},
		}

	// Rule 3: over twice the limit or weak credit score. The amount
	// check takes priority in the reason when both apply.
	case req.LoanAmount > customer.PreApprovedLimit*2 || customer.CreditScore < 700:
		reason := "Credit score below minimum threshold (700). Loan cannot be approved."
		if req.LoanAmount > customer.PreApprovedLimit*2 {
			reason = "Loan amount exceeds maximum limit (2× pre-approved limit)."
		}
		return &models.UnderwritingResult{
			Outcome:  models.OutcomeRejected,
			Approved: false,
			Reason:   reason,
			Conditions: []string{
				"Consider reapplying after improving credit score or requesting a lower amount",
			},
		}

	// Unreachable: rules 1-3 are exhaustive over positive inputs.
	default:
		return &models.UnderwritingResult{
			Outcome:    models.OutcomeRejected,
			Approved:   false,
			Reason:     "Loan evaluation failed. Please contact support.",
			Conditions: []string{},
		}
	}
}

// MonthlyEMI computes the standard amortization installment:
// P·r·(1+r)^n / ((1+r)^n − 1), with r the monthly rate and n the tenure
// in months.
func MonthlyEMI(principal, annualRatePct float64, tenureYears int) float64 {
	r := annualRatePct / 100 / 12
	n := float64(tenureYears * 12)
	pow := math.Pow(1+r, n)
	return principal * r * pow / (pow - 1)
}
