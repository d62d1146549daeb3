// Package extract pulls loan figures out of free-text chat messages.
// The matching is deliberately simple: first integer token plus an
// optional unit marker. Values of zero are treated as absent so they can
// never form a loan request.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	amountPattern = regexp.MustCompile(`(?i)(\d+)\s*(lakh|lac|k|thousand|rupees?|₹)?`)
	tenurePattern = regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)`)
)

// LoanTerms holds whatever could be read out of one message. Nil means
// the message did not mention that slot.
type LoanTerms struct {
	Amount *float64
	Tenure *int
}

// Loan extracts a requested amount and tenure from a message.
//
// Only an explicit lakh/lac marker scales the amount by 100,000; a plain
// "500000" stays 500000 and a bare "5" stays 5.
func Loan(text string) LoanTerms {
	return LoanTerms{
		Amount: Amount(text),
		Tenure: Tenure(text),
	}
}

// Amount extracts the first integer token as a rupee amount, scaling by
// 100,000 when a lakh/lac unit follows it.
func Amount(text string) *float64 {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return nil
	}

	unit := strings.ToLower(m[2])
	if strings.Contains(unit, "lakh") || strings.Contains(unit, "lac") {
		value *= 100000
	}
	return &value
}

// Tenure extracts the first integer token followed by a year marker.
func Tenure(text string) *int {
	m := tenurePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	value, err := strconv.Atoi(m[1])
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}

// Salary extracts an annual salary figure, with the same unit handling
// as Amount.
func Salary(text string) *float64 {
	return Amount(text)
}
