package letter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instantcredit-agents/internal/models"
)

func TestNumber(t *testing.T) {
	now := time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		assert.Regexp(t, `^SL-202503-\d{5}$`, Number(now))
	}
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{500, "500"},
		{5000, "5,000"},
		{500000, "5,00,000"},
		{1234567, "12,34,567"},
		{10000000, "1,00,00,000"},
		{-5000, "-5,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatINR(tt.amount))
	}
}

func TestRenderHTML(t *testing.T) {
	data := Data{
		Customer: models.Customer{
			ID:   "CUST001",
			Name: "Rahul Sharma",
			City: "Mumbai",
		},
		LoanRequest: models.LoanRequest{
			CustomerID: "CUST001",
			LoanAmount: 500000,
			Tenure:     5,
		},
		UnderwritingResult: models.UnderwritingResult{
			Outcome:         models.OutcomeApproved,
			Approved:        true,
			SanctionAmount:  500000,
			InterestRatePct: 8.5,
			MonthlyEMI:      10258.27,
			Conditions:      []string{"Interest Rate: 8.5% per annum", "Tenure: 5 years"},
		},
		GeneratedDate: time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC),
		LetterNumber:  "SL-202503-00042",
	}

	html, err := RenderHTML(data)
	require.NoError(t, err)

	assert.Contains(t, html, "Rahul Sharma")
	assert.Contains(t, html, "SL-202503-00042")
	assert.Contains(t, html, "₹5,00,000")
	assert.Contains(t, html, "8.5% per annum")
	assert.Contains(t, html, "₹10,258")
	assert.Contains(t, html, "Tenure: 5 years")
}

func TestRenderHTML_RejectedLoan(t *testing.T) {
	data := Data{
		UnderwritingResult: models.UnderwritingResult{
			Outcome:  models.OutcomeRejected,
			Approved: false,
		},
	}

	_, err := RenderHTML(data)
	require.Error(t, err)
}
