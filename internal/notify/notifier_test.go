package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/letter"
	"instantcredit-agents/internal/models"
)

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

func sanctionData() letter.Data {
	return letter.Data{
		Customer: models.Customer{
			ID:    "CUST001",
			Name:  "Rahul Sharma",
			City:  "Mumbai",
			Email: "rahul@example.com",
			Phone: "+919876543210",
		},
		LoanRequest: models.LoanRequest{CustomerID: "CUST001", LoanAmount: 500000, Tenure: 5},
		UnderwritingResult: models.UnderwritingResult{
			Outcome:         models.OutcomeApproved,
			Approved:        true,
			SanctionAmount:  500000,
			InterestRatePct: 8.5,
			MonthlyEMI:      10258.27,
		},
		GeneratedDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		LetterNumber:  "SL-202503-04821",
	}
}

func TestSendSanctionLetter_EmailOnly(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewNotifierWithClients(sesMock, snsMock, "loans@instantcredit.example", false, logger.NewNoOpLogger())

	data := sanctionData()
	err := n.SendSanctionLetter(context.Background(), data.Customer, data, "<html>letter</html>")
	require.NoError(t, err)

	require.Len(t, sesMock.inputs, 1)
	input := sesMock.inputs[0]
	assert.Equal(t, []string{"rahul@example.com"}, input.Destination.ToAddresses)
	assert.Equal(t, "loans@instantcredit.example", *input.Source)
	assert.Contains(t, *input.Message.Subject.Data, "SL-202503-04821")
	assert.Equal(t, "<html>letter</html>", *input.Message.Body.Html.Data)

	assert.Empty(t, snsMock.inputs)
}

func TestSendSanctionLetter_WithSMS(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewNotifierWithClients(sesMock, snsMock, "loans@instantcredit.example", true, logger.NewNoOpLogger())

	data := sanctionData()
	err := n.SendSanctionLetter(context.Background(), data.Customer, data, "<html>letter</html>")
	require.NoError(t, err)

	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+919876543210", *snsMock.inputs[0].PhoneNumber)
	assert.Contains(t, *snsMock.inputs[0].Message, "5,00,000")
	assert.Contains(t, *snsMock.inputs[0].Message, "SL-202503-04821")
}

func TestSendSanctionLetter_SMSFailureIsSwallowed(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{err: errors.New("sns unavailable")}
	n := NewNotifierWithClients(sesMock, snsMock, "loans@instantcredit.example", true, logger.NewNoOpLogger())

	data := sanctionData()
	err := n.SendSanctionLetter(context.Background(), data.Customer, data, "<html>letter</html>")
	assert.NoError(t, err)
	assert.Len(t, sesMock.inputs, 1)
}

func TestSendSanctionLetter_EmailFailure(t *testing.T) {
	sesMock := &mockSES{err: errors.New("ses throttled")}
	n := NewNotifierWithClients(sesMock, &mockSNS{}, "loans@instantcredit.example", false, logger.NewNoOpLogger())

	data := sanctionData()
	err := n.SendSanctionLetter(context.Background(), data.Customer, data, "<html>letter</html>")
	require.Error(t, err)
	assert.True(t, commonerrors.IsCollaborator(err))
}

func TestSendSanctionLetter_NoEmailOnFile(t *testing.T) {
	n := NewNotifierWithClients(&mockSES{}, &mockSNS{}, "loans@instantcredit.example", false, logger.NewNoOpLogger())

	data := sanctionData()
	data.Customer.Email = ""
	err := n.SendSanctionLetter(context.Background(), data.Customer, data, "<html>letter</html>")
	require.Error(t, err)
	assert.True(t, commonerrors.IsValidation(err))
}
