package models

import "time"

// Customer is a directory record. Immutable once loaded; the core only
// ever references it by ID.
type Customer struct {
	ID               string  `json:"id" db:"id"`
	Name             string  `json:"name" db:"name"`
	Age              int     `json:"age" db:"age"`
	City             string  `json:"city" db:"city"`
	CreditScore      int     `json:"creditScore" db:"credit_score"`
	CurrentLoans     int     `json:"currentLoans" db:"current_loans"`
	PreApprovedLimit float64 `json:"preApprovedLimit" db:"pre_approved_limit"`
	Email            string  `json:"email,omitempty" db:"email"`
	Phone            string  `json:"phone,omitempty" db:"phone"`
}

// CreditProfile is the credit bureau's view of a customer.
type CreditProfile struct {
	CustomerID    string `json:"customerId"`
	CreditScore   int    `json:"creditScore"`
	CreditHistory string `json:"creditHistory"`
	DefaultRisk   string `json:"defaultRisk"`
}

// LoanRequest is created once by the sales agent when both the amount and
// the tenure have been read out of a single user message. It is never
// mutated afterwards within a conversation.
type LoanRequest struct {
	CustomerID   string  `json:"customerId"`
	LoanAmount   float64 `json:"loanAmount"`
	Tenure       int     `json:"tenure"`
	InterestRate float64 `json:"interestRate,omitempty"`
}

// VerificationResult is produced by the KYC collaborator and retained in
// conversation state for display.
type VerificationResult struct {
	Verified  bool   `json:"verified"`
	KYCStatus string `json:"kycStatus"`
	Message   string `json:"message"`
}

// UnderwritingOutcome is the engine's tagged decision. Agents branch on
// this field, never on the contents of the condition strings.
type UnderwritingOutcome string

const (
	OutcomeApproved        UnderwritingOutcome = "APPROVED"
	OutcomeNeedsSalaryInfo UnderwritingOutcome = "NEEDS_SALARY_INFO"
	OutcomeRejected        UnderwritingOutcome = "REJECTED"
)

// UnderwritingResult is the decision engine's output. Interest rate, EMI
// and the EMI-to-salary ratio are carried as structured fields; the
// Conditions list is display text only.
type UnderwritingResult struct {
	Outcome          UnderwritingOutcome `json:"outcome"`
	Approved         bool                `json:"approved"`
	Reason           string              `json:"reason"`
	SanctionAmount   float64             `json:"sanctionAmount,omitempty"`
	InterestRatePct  float64             `json:"interestRatePct,omitempty"`
	MonthlyEMI       float64             `json:"monthlyEmi,omitempty"`
	EMIToSalaryRatio float64             `json:"emiToSalaryRatio,omitempty"`
	Conditions       []string            `json:"conditions,omitempty"`
}

// ChatMessage is one entry in a conversation's append-only transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // user, assistant or system
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	AgentType AgentType `json:"agentType,omitempty"`
}
