// Package errors provides standardized error handling for the loan
// origination flow.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation and lookup failures reported to the immediate caller.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeCustomerNotFound ErrorCode = "CUSTOMER_NOT_FOUND"

	// Collaborator failures converted to retry prompts by the owning agent.
	ErrCodeKYCProviderFailed     ErrorCode = "KYC_PROVIDER_FAILED"
	ErrCodeCreditBureauFailed    ErrorCode = "CREDIT_BUREAU_FAILED"
	ErrCodeDirectoryLookupFailed ErrorCode = "DIRECTORY_LOOKUP_FAILED"
	ErrCodeNotificationFailed    ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Dispatcher guard failures that force a recovery transition.
	ErrCodeStagePreconditionFailed ErrorCode = "STAGE_PRECONDITION_FAILED"

	ErrCodeLetterNotAvailable ErrorCode = "LETTER_NOT_AVAILABLE"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCustomerNotFoundError creates a non-retryable lookup error.
func NewCustomerNotFoundError(customerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCustomerNotFound,
		Message:   "Customer not found",
		Details:   fmt.Sprintf("customerId: %s", customerID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewKYCProviderError creates a retryable KYC collaborator error.
func NewKYCProviderError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeKYCProviderFailed,
		Message:   "KYC provider call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCreditBureauError creates a retryable credit bureau error.
func NewCreditBureauError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCreditBureauFailed,
		Message:   "Credit bureau call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDirectoryLookupError creates a retryable customer directory error.
func NewDirectoryLookupError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDirectoryLookupFailed,
		Message:   "Customer directory call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendError creates a retryable notification delivery error.
func NewNotificationSendError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationFailed,
		Message:   "Notification delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStagePreconditionError signals that a stage handler was invoked
// without the state it requires.
func NewStagePreconditionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStagePreconditionFailed,
		Message:   "Conversation state is missing required fields for this stage",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLetterNotAvailableError signals a sanction letter request for a loan
// that was not approved.
func NewLetterNotAvailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLetterNotAvailable,
		Message:   "Sanction letter cannot be generated",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func codeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	return codeOf(err) == ErrCodeValidationFailed
}

// IsNotFound reports whether err is an unknown-customer failure.
func IsNotFound(err error) bool {
	return codeOf(err) == ErrCodeCustomerNotFound
}

// IsCollaborator reports whether err came from an external collaborator
// call (KYC, credit bureau, directory, notifications).
func IsCollaborator(err error) bool {
	switch codeOf(err) {
	case ErrCodeKYCProviderFailed, ErrCodeCreditBureauFailed, ErrCodeDirectoryLookupFailed, ErrCodeNotificationFailed:
		return true
	}
	return false
}

// IsLetterNotAvailable reports whether err is a sanction letter request
// for an unapproved loan.
func IsLetterNotAvailable(err error) bool {
	return codeOf(err) == ErrCodeLetterNotAvailable
}

// IsStagePrecondition reports whether err is a dispatcher guard failure.
func IsStagePrecondition(err error) bool {
	return codeOf(err) == ErrCodeStagePreconditionFailed
}
