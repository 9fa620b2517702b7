package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// AppName is used as the sender display name and in message bodies.
const AppName = "QR-Track"

// Notifier delivers email verification codes. Delivery is best-effort:
// whether a failure aborts the caller's operation is the caller's policy.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code, displayName string) error
}

// New returns a Resend-backed notifier, or a log-only notifier when no API
// key is configured (development).
func New(apiKey, from string) Notifier {
	if apiKey == "" {
		return &LogNotifier{}
	}
	return &Resend{APIKey: apiKey, From: from}
}

// LogNotifier logs codes instead of sending email.
type LogNotifier struct{}

func (n *LogNotifier) SendVerificationCode(ctx context.Context, email, code, displayName string) error {
	slog.Info("email delivery not configured, logging verification code",
		"to", email, "code", code)
	return nil
}

const resendEndpoint = "https://api.resend.com/emails"

// Resend sends verification codes through the Resend HTTP API.
type Resend struct {
	APIKey string
	From   string

	// Client is used for API calls; http.DefaultClient if nil.
	Client *http.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (r *Resend) SendVerificationCode(ctx context.Context, email, code, displayName string) error {
	body := resendRequest{
		From:    fmt.Sprintf("%s <%s>", AppName, r.From),
		To:      []string{email},
		Subject: fmt.Sprintf("Verify Your Email - %s", AppName),
		Text: fmt.Sprintf(
			"Hello %s,\n\nThank you for signing up! Please verify your email address by entering the following code:\n\n%s\n\nThis code will expire in 10 minutes.\n\nIf you didn't create an account with %s, you can safely ignore this email.",
			displayName, code, AppName,
		),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sending email: resend returned %d: %s", resp.StatusCode, detail)
	}

	return nil
}
