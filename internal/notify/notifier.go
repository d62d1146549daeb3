// Package notify delivers sanction letters to customers over email, with
// an optional SMS heads-up.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	commonerrors "instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/common/metrics"
	"instantcredit-agents/internal/letter"
	"instantcredit-agents/internal/models"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Notifier struct {
	sesClient   SESService
	snsClient   SNSService
	senderEmail string
	smsEnabled  bool
	logger      logger.Logger
}

// NewNotifier builds SES and SNS clients from the ambient AWS config.
func NewNotifier(ctx context.Context, region, senderEmail string, smsEnabled bool, log logger.Logger) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Notifier{
		sesClient:   ses.NewFromConfig(awsCfg),
		snsClient:   sns.NewFromConfig(awsCfg),
		senderEmail: senderEmail,
		smsEnabled:  smsEnabled,
		logger:      log.WithFields(map[string]interface{}{"component": "notifier"}),
	}, nil
}

// NewNotifierWithClients injects the AWS clients, used by tests.
func NewNotifierWithClients(sesClient SESService, snsClient SNSService, senderEmail string, smsEnabled bool, log logger.Logger) *Notifier {
	return &Notifier{
		sesClient:   sesClient,
		snsClient:   snsClient,
		senderEmail: senderEmail,
		smsEnabled:  smsEnabled,
		logger:      log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// SendSanctionLetter emails the rendered letter to the customer and, when
// SMS is enabled and a phone number is on file, publishes a short alert.
// The SMS leg is best-effort: its failure never fails the notification.
func (n *Notifier) SendSanctionLetter(ctx context.Context, customer models.Customer, data letter.Data, letterHTML string) error {
	if customer.Email == "" {
		return commonerrors.NewValidationError("customer has no email address on file")
	}

	subject := fmt.Sprintf("Your Loan Sanction Letter %s", data.LetterNumber)
	if err := n.sendEmail(ctx, customer.Email, subject, letterHTML); err != nil {
		metrics.CollaboratorFailures.WithLabelValues("notifications").Inc()
		return commonerrors.NewNotificationSendError(err)
	}

	n.logger.Info("sanction letter emailed", map[string]interface{}{
		"customerId":   customer.ID,
		"letterNumber": data.LetterNumber,
	})

	if n.smsEnabled && customer.Phone != "" {
		message := fmt.Sprintf("Good news %s! Your loan of ₹%s has been sanctioned. Letter %s has been emailed to you.",
			customer.Name, letter.FormatINR(data.UnderwritingResult.SanctionAmount), data.LetterNumber)
		if err := n.sendSMS(ctx, customer.Phone, message); err != nil {
			n.logger.Warn("SMS send failed", map[string]interface{}{
				"customerId": customer.ID,
				"error":      err.Error(),
			})
		}
	}

	return nil
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.senderEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
