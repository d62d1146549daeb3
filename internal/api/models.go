package api

import (
	"instantcredit-agents/internal/models"
)

type startConversationRequest struct {
	CustomerID string `json:"customerId"`
}

type startConversationResponse struct {
	ConversationID string          `json:"conversationId"`
	Customer       models.Customer `json:"customer"`
	Message        string          `json:"message"`
	Stage          models.Stage    `json:"stage"`
}

type turnRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}

type turnResponse struct {
	ConversationID string                   `json:"conversationId"`
	Message        string                   `json:"message"`
	Stage          models.Stage             `json:"stage"`
	AgentType      models.AgentType         `json:"agentType"`
	State          models.ConversationState `json:"state"`
}

type verifyRequest struct {
	CustomerID string `json:"customerId"`
}

type scoreRequest struct {
	CustomerID string `json:"customerId"`
}

type evaluateRequest struct {
	CustomerID string   `json:"customerId"`
	LoanAmount float64  `json:"loanAmount"`
	Tenure     int      `json:"tenure"`
	Salary     *float64 `json:"salary,omitempty"`
}

type letterRequest struct {
	ConversationID string `json:"conversationId"`
}

type letterResponse struct {
	LetterNumber string `json:"letterNumber"`
	HTML         string `json:"html"`
}
