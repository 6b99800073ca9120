// internal/workers/pricing/send-premium-quote/models.go
package sendpremiumquote

import (
	"context"
	"database/sql"

	"premium-workers/internal/common/logger"
)

type Input struct {
	ApplicantID      string  `json:"applicantId,omitempty"`
	Email            string  `json:"email,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	PredictionID     string  `json:"predictionId,omitempty"`
	Premium          float64 `json:"premium"`
	FormattedPremium string  `json:"formattedPremium,omitempty"`
	Band             string  `json:"band,omitempty"`
	PolicyVersion    string  `json:"policyVersion,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent" or "disabled"
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, text, html string) (string, error)
}

// SMSSender is satisfied by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type ServiceDependencies struct {
	DB     *sql.DB
	Email  EmailSender
	SMS    SMSSender
	Logger logger.Logger
}
