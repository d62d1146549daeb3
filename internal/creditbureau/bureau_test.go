package creditbureau

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/directory"
)

func TestScore(t *testing.T) {
	svc := NewService(directory.NewInMemory(), logger.NewNoOpLogger())

	tests := []struct {
		name        string
		customerID  string
		wantScore   int
		wantHistory string
		wantRisk    string
	}{
		{"excellent band", "CUST004", 810, "Excellent", "Very Low"},
		{"good band", "CUST001", 780, "Good", "Low"},
		{"fair band", "CUST002", 720, "Fair", "Medium"},
		{"poor band", "CUST003", 680, "Poor", "High"},
		{"very poor band", "CUST005", 640, "Very Poor", "Very High"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := svc.Score(context.Background(), tt.customerID)
			require.NoError(t, err)

			assert.Equal(t, tt.customerID, profile.CustomerID)
			assert.Equal(t, tt.wantScore, profile.CreditScore)
			assert.Equal(t, tt.wantHistory, profile.CreditHistory)
			assert.Equal(t, tt.wantRisk, profile.DefaultRisk)
		})
	}
}

func TestScore_MissingCustomerID(t *testing.T) {
	svc := NewService(directory.NewInMemory(), logger.NewNoOpLogger())

	_, err := svc.Score(context.Background(), "")
	require.Error(t, err)
	assert.True(t, commonerrors.IsValidation(err))
}

func TestScore_UnknownCustomer(t *testing.T) {
	svc := NewService(directory.NewInMemory(), logger.NewNoOpLogger())

	_, err := svc.Score(context.Background(), "CUST404")
	require.Error(t, err)
	assert.True(t, commonerrors.IsNotFound(err))
}
