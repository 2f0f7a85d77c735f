// Package notifier implements the outbound notification channels. Senders
// convert every failure into a Result; no error escapes their boundary.
package notifier

import (
	"context"

	"github.com/insurang/lead-funnel/internal/models"
)

// Message is one notification to deliver. To is an email address or a
// digits-only phone number depending on the channel. Name, Subject, Body and
// Link may contain user-supplied text; senders are responsible for escaping.
type Message struct {
	To      string
	Name    string
	Subject string
	Body    string
	Link    string
}

// Result is the outcome of a single delivery attempt.
type Result struct {
	Success    bool
	ProviderID string
	Err        string
}

// Sender delivers a message over one channel.
type Sender interface {
	Channel() models.Channel
	Send(ctx context.Context, msg Message) Result
}

// CredentialSource resolves provider credentials at call time, so updates
// made through the admin settings endpoint apply without a restart.
type CredentialSource interface {
	Lookup(ctx context.Context, key string) string
}

// StaticCredentials is a map-backed CredentialSource.
type StaticCredentials map[string]string

func (s StaticCredentials) Lookup(_ context.Context, key string) string {
	return s[key]
}

const errNotConfigured = "provider credentials are not configured"

func failure(err error) Result {
	return Result{Success: false, Err: err.Error()}
}
