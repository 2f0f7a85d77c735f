package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/insurang/lead-funnel/internal/config"
	"github.com/insurang/lead-funnel/internal/models"
)

// emailTemplate wraps every outgoing mail. html/template escapes the
// interpolated name and link, so user-supplied text cannot inject markup.
const emailTemplate = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;max-width:600px;margin:0 auto">
  <h2>{{.Subject}}</h2>
  <p>{{.Name}}님, 안녕하세요.</p>
  <p>{{.Body}}</p>
  {{if .Link}}<p><a href="{{.Link}}">자료 다운로드</a></p>{{end}}
  <p style="color:#888;font-size:12px">INSURANG</p>
</body>
</html>`

type emailAPIRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type emailAPIResponse struct {
	ID string `json:"id"`
}

// EmailSender delivers mail through an HTTP provider when an API key is
// configured, falling back to SMTP when only SMTP credentials exist.
type EmailSender struct {
	cfg        config.EmailConfig
	creds      CredentialSource
	httpClient *http.Client
	breaker    *CircuitBreaker
	logger     *zap.Logger
	tmpl       *template.Template
}

func NewEmailSender(cfg config.EmailConfig, creds CredentialSource, logger *zap.Logger) *EmailSender {
	return &EmailSender{
		cfg:   cfg,
		creds: creds,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		breaker: NewCircuitBreaker("email-provider", &cfg.CircuitBreaker, logger),
		logger:  logger,
		tmpl:    template.Must(template.New("email").Parse(emailTemplate)),
	}
}

func (s *EmailSender) Channel() models.Channel {
	return models.ChannelEmail
}

// Send renders the HTML body and delivers it. All failures, including a
// tripped breaker, come back as a failed Result.
func (s *EmailSender) Send(ctx context.Context, msg Message) Result {
	body, err := s.render(msg)
	if err != nil {
		return failure(fmt.Errorf("failed to render email body: %w", err))
	}

	apiKey := s.creds.Lookup(ctx, models.SettingEmailAPIKey)
	smtpHost := s.creds.Lookup(ctx, models.SettingSMTPHost)
	if apiKey == "" && smtpHost == "" {
		return Result{Success: false, Err: errNotConfigured}
	}

	var providerID string
	err = s.breaker.Execute(ctx, func() error {
		if apiKey != "" {
			id, apiErr := s.sendAPI(ctx, apiKey, msg, body)
			providerID = id
			return apiErr
		}
		return s.sendSMTP(ctx, smtpHost, msg, body)
	})
	if err != nil {
		return failure(err)
	}

	return Result{Success: true, ProviderID: providerID}
}

func (s *EmailSender) render(msg Message) (string, error) {
	var buf bytes.Buffer
	err := s.tmpl.Execute(&buf, map[string]string{
		"Subject": msg.Subject,
		"Name":    msg.Name,
		"Body":    msg.Body,
		"Link":    msg.Link,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *EmailSender) sendAPI(ctx context.Context, apiKey string, msg Message, body string) (string, error) {
	from := s.creds.Lookup(ctx, models.SettingEmailFrom)
	if from == "" {
		from = s.cfg.From
	}

	reqBody := emailAPIRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    body,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Warn("Failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, excerpt)
	}

	var apiResp emailAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		// Delivery was accepted; a malformed body only loses the provider ID.
		s.logger.Warn("Failed to decode email provider response", zap.Error(err))
		return "", nil
	}

	return apiResp.ID, nil
}

func (s *EmailSender) sendSMTP(ctx context.Context, host string, msg Message, body string) error {
	from := s.creds.Lookup(ctx, models.SettingEmailFrom)
	if from == "" {
		from = s.cfg.From
	}

	port := s.cfg.SMTPPort
	if p := s.creds.Lookup(ctx, models.SettingSMTPPort); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			port = parsed
		}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, port,
		s.creds.Lookup(ctx, models.SettingSMTPUser),
		s.creds.Lookup(ctx, models.SettingSMTPPassword))

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send via SMTP: %w", err)
	}

	return nil
}

// BreakerState exposes the provider breaker for health reporting.
func (s *EmailSender) BreakerState() string {
	return s.breaker.State()
}
