// internal/workers/pricing/send-premium-quote/service.go
package sendpremiumquote

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"premium-workers/internal/common/errors"
	"premium-workers/internal/common/logger"
	"premium-workers/internal/premium"

	"github.com/google/uuid"
)

const selectContact = `SELECT email, phone FROM applicants WHERE id = $1`

const (
	quoteSubject = "Your health insurance premium quote"
	quoteBody    = "Your estimated annual premium is {{formattedPremium}} ({{band}} plan pricing, policy {{policyVersion}}). Reference: {{predictionId}}."
	quoteSMS     = "Premium quote: {{formattedPremium}}. Ref {{predictionId}}"
)

type Service struct {
	config *Config
	db     *sql.DB
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
	now    func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config: config,
		db:     deps.DB,
		email:  deps.Email,
		sms:    deps.SMS,
		logger: log,
		now:    time.Now,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := GetInputSchema().Validate(input)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(result.Error())
	}

	email, phone := input.Email, input.Phone
	if email == "" && phone == "" {
		email, phone, err = s.lookupContact(ctx, input.ApplicantID)
		if err != nil {
			return nil, err
		}
	}
	if email == "" && phone == "" {
		return nil, errors.NewInvalidRecipientError(fmt.Sprintf("applicantId %s has no email or phone", input.ApplicantID))
	}

	formatted := input.FormattedPremium
	if formatted == "" {
		formatted = premium.FormatPremium(input.Premium, s.config.CurrencySymbol)
	}
	data := map[string]interface{}{
		"formattedPremium": formatted,
		"band":             input.Band,
		"policyVersion":    input.PolicyVersion,
		"predictionId":     input.PredictionID,
	}

	var channels []string

	if s.config.EmailEnabled && s.email != nil && email != "" {
		body := renderTemplate(quoteBody, data)
		msgID, err := s.email.SendEmail(ctx, email, quoteSubject, body, "<p>"+body+"</p>")
		if err != nil {
			return nil, errors.NewQuoteNotificationFailedError(ChannelEmail, err)
		}
		s.logger.Info("quote email sent", map[string]interface{}{
			"predictionId": input.PredictionID,
			"messageId":    msgID,
		})
		channels = append(channels, ChannelEmail)
	}

	if s.config.SMSEnabled && s.sms != nil && phone != "" {
		msgID, err := s.sms.SendSMS(ctx, phone, renderTemplate(quoteSMS, data))
		if err != nil {
			return nil, errors.NewQuoteNotificationFailedError(ChannelSMS, err)
		}
		s.logger.Info("quote sms sent", map[string]interface{}{
			"predictionId": input.PredictionID,
			"messageId":    msgID,
		})
		channels = append(channels, ChannelSMS)
	}

	status := StatusDisabled
	if len(channels) > 0 {
		status = StatusSent
	}

	return &Output{
		NotificationID: uuid.New().String(),
		Status:         status,
		Channels:       channels,
		SentAt:         s.now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *Service) lookupContact(ctx context.Context, applicantID string) (string, string, error) {
	if s.db == nil {
		return "", "", errors.NewInvalidRecipientError("no contact given and applicant store not configured")
	}

	var email, phone sql.NullString
	err := s.db.QueryRowContext(ctx, selectContact, applicantID).Scan(&email, &phone)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", "", errors.NewApplicantNotFoundError(applicantID)
	}
	if err != nil {
		return "", "", errors.NewQueryExecutionFailedError("select_contact", err)
	}
	return email.String, phone.String, nil
}

// renderTemplate replaces {{key}} placeholders and drops the ones with no
// value.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
