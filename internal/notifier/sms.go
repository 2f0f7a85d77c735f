package notifier

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/config"
	"github.com/insurang/lead-funnel/internal/models"
)

type smsGatewayRequest struct {
	Message smsGatewayMessage `json:"message"`
}

type smsGatewayMessage struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
}

type smsGatewayResponse struct {
	MessageID string `json:"messageId"`
}

// SMSSender delivers text messages through an HMAC-authenticated gateway.
type SMSSender struct {
	cfg        config.SMSConfig
	creds      CredentialSource
	httpClient *http.Client
	breaker    *CircuitBreaker
	logger     *zap.Logger
	now        func() time.Time
}

func NewSMSSender(cfg config.SMSConfig, creds CredentialSource, logger *zap.Logger) *SMSSender {
	return &SMSSender{
		cfg:   cfg,
		creds: creds,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		breaker: NewCircuitBreaker("sms-gateway", &cfg.CircuitBreaker, logger),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *SMSSender) Channel() models.Channel {
	return models.ChannelSMS
}

// Send composes the text and submits it to the gateway. A 200 response
// without a message identifier still counts as a failure.
func (s *SMSSender) Send(ctx context.Context, msg Message) Result {
	apiKey := s.creds.Lookup(ctx, models.SettingSMSAPIKey)
	apiSecret := s.creds.Lookup(ctx, models.SettingSMSAPISecret)
	if apiKey == "" || apiSecret == "" {
		return Result{Success: false, Err: errNotConfigured}
	}

	text := msg.Body
	if msg.Link != "" {
		text = text + " " + msg.Link
	}

	sender := s.creds.Lookup(ctx, models.SettingSMSSender)
	if sender == "" {
		sender = s.cfg.Sender
	}

	var providerID string
	err := s.breaker.Execute(ctx, func() error {
		id, sendErr := s.submit(ctx, apiKey, apiSecret, sender, msg.To, text)
		providerID = id
		return sendErr
	})
	if err != nil {
		return failure(err)
	}

	return Result{Success: true, ProviderID: providerID}
}

func (s *SMSSender) submit(ctx context.Context, apiKey, apiSecret, from, to, text string) (string, error) {
	reqBody := smsGatewayRequest{
		Message: smsGatewayMessage{To: to, From: from, Text: text},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	auth, err := s.authorization(apiKey, apiSecret)
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)

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
		return "", fmt.Errorf("sms gateway returned status %d: %s", resp.StatusCode, excerpt)
	}

	var gatewayResp smsGatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gatewayResp); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if gatewayResp.MessageID == "" {
		return "", fmt.Errorf("gateway response missing message id")
	}

	return gatewayResp.MessageID, nil
}

// authorization builds the gateway's HMAC header. The salt and timestamp are
// fresh per call; signature = hex(HMAC-SHA256(secret, date + salt)).
func (s *SMSSender) authorization(apiKey, apiSecret string) (string, error) {
	date := s.now().UTC().Format(time.RFC3339)

	saltBytes := make([]byte, 16)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	salt := hex.EncodeToString(saltBytes)

	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(date + salt))
	signature := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("HMAC-SHA256 apiKey=%s, date=%s, salt=%s, signature=%s",
		apiKey, date, salt, signature), nil
}

// BreakerState exposes the provider breaker for health reporting.
func (s *SMSSender) BreakerState() string {
	return s.breaker.State()
}
