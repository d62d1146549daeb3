package sales

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/models"
)

func TestProcess_BothSlotsPresent(t *testing.T) {
	h := NewHandler(logger.NewNoOpLogger())
	state := models.ConversationState{CustomerID: "CUST001", Stage: models.StageSales}

	resp, err := h.Process(context.Background(), "I need 5 lakh for 3 years", state)
	require.NoError(t, err)

	require.NotNil(t, resp.LoanRequest)
	assert.Equal(t, "CUST001", resp.LoanRequest.CustomerID)
	assert.Equal(t, float64(500000), resp.LoanRequest.LoanAmount)
	assert.Equal(t, 3, resp.LoanRequest.Tenure)
	assert.Contains(t, resp.Message, "₹5,00,000")
	assert.Contains(t, resp.Message, "3 year(s)")
}

func TestProcess_AmountOnly(t *testing.T) {
	h := NewHandler(logger.NewNoOpLogger())
	state := models.ConversationState{CustomerID: "CUST001", Stage: models.StageSales}

	resp, err := h.Process(context.Background(), "I want 10 lakh", state)
	require.NoError(t, err)

	assert.Nil(t, resp.LoanRequest)
	assert.Contains(t, resp.Message, "how many years")
}

func TestProcess_NeitherSlot(t *testing.T) {
	h := NewHandler(logger.NewNoOpLogger())
	state := models.ConversationState{CustomerID: "CUST001", Stage: models.StageSales}

	resp, err := h.Process(context.Background(), "hello, I'd like a loan", state)
	require.NoError(t, err)

	assert.Nil(t, resp.LoanRequest)
	assert.Contains(t, resp.Message, "I need 5 lakh for 3 years")
}

func TestProcess_NoSlotMemoryAcrossTurns(t *testing.T) {
	h := NewHandler(logger.NewNoOpLogger())
	state := models.ConversationState{CustomerID: "CUST001", Stage: models.StageSales}

	first, err := h.Process(context.Background(), "10 lakh", state)
	require.NoError(t, err)
	assert.Nil(t, first.LoanRequest)

	// The earlier amount is forgotten; a tenure-only follow-up does not
	// complete the request.
	second, err := h.Process(context.Background(), "years", state)
	require.NoError(t, err)
	assert.Nil(t, second.LoanRequest)
}
