package notifier_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/config"
	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/notifier"
)

func emailConfig(apiURL string) config.EmailConfig {
	return config.EmailConfig{
		APIURL:  apiURL,
		From:    "noreply@insurang.kr",
		Timeout: 5,
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxRequests:      3,
			Interval:         60,
			Timeout:          60,
			FailureRatio:     0.6,
			ConsecutiveFails: 5,
		},
	}
}

func emailCredentials() notifier.StaticCredentials {
	return notifier.StaticCredentials{
		models.SettingEmailAPIKey: "test-api-key",
		models.SettingEmailFrom:   "leads@insurang.kr",
	}
}

func TestEmailSender_Send_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var req struct {
			From    string   `json:"from"`
			To      []string `json:"to"`
			Subject string   `json:"subject"`
			HTML    string   `json:"html"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "leads@insurang.kr", req.From)
		assert.Equal(t, []string{"kim@example.com"}, req.To)
		assert.Contains(t, req.HTML, "김보험님")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "em-123"})
	}))
	defer server.Close()

	sender := notifier.NewEmailSender(emailConfig(server.URL), emailCredentials(), zap.NewNop())

	result := sender.Send(context.Background(), notifier.Message{
		To:      "kim@example.com",
		Name:    "김보험",
		Subject: "자료 안내",
		Body:    "요청하신 자료입니다.",
	})

	assert.True(t, result.Success)
	assert.Equal(t, "em-123", result.ProviderID)
	assert.Empty(t, result.Err)
}

func TestEmailSender_Send_EscapesUserText(t *testing.T) {
	var html string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			HTML string `json:"html"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		html = req.HTML

		_ = json.NewEncoder(w).Encode(map[string]string{"id": "em-1"})
	}))
	defer server.Close()

	sender := notifier.NewEmailSender(emailConfig(server.URL), emailCredentials(), zap.NewNop())

	result := sender.Send(context.Background(), notifier.Message{
		To:      "kim@example.com",
		Name:    "<script>alert(1)</script>",
		Subject: "자료 안내",
		Body:    "요청하신 자료입니다.",
	})

	assert.True(t, result.Success)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestEmailSender_Send_NotConfigured(t *testing.T) {
	sender := notifier.NewEmailSender(emailConfig("http://localhost:0"), notifier.StaticCredentials{}, zap.NewNop())

	result := sender.Send(context.Background(), notifier.Message{To: "kim@example.com"})

	assert.False(t, result.Success)
	assert.Equal(t, "provider credentials are not configured", result.Err)
}

func TestEmailSender_Send_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := notifier.NewEmailSender(emailConfig(server.URL), emailCredentials(), zap.NewNop())

	result := sender.Send(context.Background(), notifier.Message{To: "kim@example.com"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Err, "status 502")
}

func TestEmailSender_Send_MalformedResponseKeepsDelivery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	sender := notifier.NewEmailSender(emailConfig(server.URL), emailCredentials(), zap.NewNop())

	result := sender.Send(context.Background(), notifier.Message{To: "kim@example.com"})

	// The provider accepted the message; only the provider ID is lost.
	assert.True(t, result.Success)
	assert.Empty(t, result.ProviderID)
}

func TestEmailSender_Send_BreakerOpensAfterFailures(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := emailConfig(server.URL)
	cfg.CircuitBreaker.ConsecutiveFails = 2
	cfg.CircuitBreaker.FailureRatio = 0.5

	sender := notifier.NewEmailSender(cfg, emailCredentials(), zap.NewNop())
	msg := notifier.Message{To: "kim@example.com"}

	for i := 0; i < 2; i++ {
		result := sender.Send(context.Background(), msg)
		assert.False(t, result.Success)
	}

	assert.Equal(t, "open", sender.BreakerState())

	result := sender.Send(context.Background(), msg)
	assert.False(t, result.Success)
	assert.Contains(t, result.Err, "circuit breaker is open")
	assert.Equal(t, 2, hits)
}
