package external

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"

	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

const charSet = "UTF-8"

type MailerConfig struct {
	// Sender is the default From address. Mail is logged and dropped when empty.
	Sender        string
	ContactSender string
	Region        string
	AdminEmail    string
}

// SESMailer sends rendered messages through Amazon SES
type SESMailer struct {
	client sesiface.SESAPI
	sender string
}

func NewSESMailer(cfg MailerConfig) (*SESMailer, error) {
	if cfg.Sender == "" {
		slog.Warn("EMAIL_SENDER not set, outgoing mail will be logged and dropped")
		return &SESMailer{}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewSESMailerWithClient(ses.New(sess), cfg.Sender), nil
}

func NewSESMailerWithClient(client sesiface.SESAPI, sender string) *SESMailer {
	return &SESMailer{client: client, sender: sender}
}

// Enabled reports whether messages are actually delivered
func (m *SESMailer) Enabled() bool {
	return m.client != nil
}

func (m *SESMailer) Send(ctx context.Context, msg *models.EmailMessage) error {
	if len(msg.To) == 0 {
		return errors.New("email has no recipients")
	}

	if !m.Enabled() {
		slog.Info("Mail delivery disabled, dropping message", "to", msg.To, "subject", msg.Subject)
		return nil
	}

	source := m.sender
	if msg.From != "" {
		source = msg.From
	}

	body := &ses.Body{}
	if msg.HTML != "" {
		body.Html = &ses.Content{Charset: aws.String(charSet), Data: aws.String(msg.HTML)}
	}
	if msg.Text != "" {
		body.Text = &ses.Content{Charset: aws.String(charSet), Data: aws.String(msg.Text)}
	}

	input := &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: aws.StringSlice(msg.To),
		},
		Message: &ses.Message{
			Body: body,
			Subject: &ses.Content{
				Charset: aws.String(charSet),
				Data:    aws.String(msg.Subject),
			},
		},
		Source: aws.String(source),
	}
	if len(msg.ReplyTo) > 0 {
		input.ReplyToAddresses = aws.StringSlice(msg.ReplyTo)
	}

	out, err := m.client.SendEmailWithContext(ctx, input)
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) {
			switch aerr.Code() {
			case ses.ErrCodeMessageRejected,
				ses.ErrCodeMailFromDomainNotVerifiedException,
				ses.ErrCodeConfigurationSetDoesNotExistException:
				slog.Error("SES rejected message", "code", aerr.Code(), "error", aerr.Message(), "subject", msg.Subject)
			default:
				slog.Error("SES send failed", "code", aerr.Code(), "error", aerr.Message())
			}
		}
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Debug("Email sent", "message_id", aws.StringValue(out.MessageId), "subject", msg.Subject)
	return nil
}
