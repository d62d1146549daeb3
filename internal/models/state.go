package models

// Stage is one state in the conversation state machine.
type Stage string

const (
	StageGreeting     Stage = "greeting"
	StageSales        Stage = "sales"
	StageVerification Stage = "verification"
	StageUnderwriting Stage = "underwriting"
	StageSanction     Stage = "sanction"
	StageRejected     Stage = "rejected"
)

// Terminal reports whether the stage accepts messages but produces no
// further transitions.
func (s Stage) Terminal() bool {
	return s == StageSanction || s == StageRejected
}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageGreeting, StageSales, StageVerification, StageUnderwriting, StageSanction, StageRejected:
		return true
	}
	return false
}

// AgentType tags which agent produced a message or is active for a stage.
type AgentType string

const (
	AgentMaster       AgentType = "master"
	AgentSales        AgentType = "sales"
	AgentVerification AgentType = "verification"
	AgentUnderwriting AgentType = "underwriting"
)

// ConversationState is the single record threaded through every turn.
// It is passed and returned by value: a handler builds a fresh copy with
// only the intended field changes and never writes through the input.
// Stage is the source of truth for routing; CurrentAgent is a derived
// view of it and the dispatcher keeps the two consistent on every
// transition.
type ConversationState struct {
	CustomerID         string              `json:"customerId,omitempty"`
	LoanRequest        *LoanRequest        `json:"loanRequest,omitempty"`
	VerificationResult *VerificationResult `json:"verificationResult,omitempty"`
	UnderwritingResult *UnderwritingResult `json:"underwritingResult,omitempty"`
	CurrentAgent       AgentType           `json:"currentAgent"`
	Stage              Stage               `json:"stage"`
}
