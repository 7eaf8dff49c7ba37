// Package email provides the Mailgun provider.
package email

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type MailgunProvider struct {
	apiKey string
	domain string
	from   string
}

func NewMailgunProvider(apiKey, domain, from string) *MailgunProvider {
	return &MailgunProvider{
		apiKey: apiKey,
		domain: domain,
		from:   from,
	}
}

func (p *MailgunProvider) SendEmail(ctx context.Context, email *Email) error {
	form := url.Values{}
	form.Set("from", p.from)
	form.Set("to", email.To)
	form.Set("subject", email.Subject)
	if email.Text != "" {
		form.Set("text", email.Text)
	}
	if email.HTML != "" {
		form.Set("html", email.HTML)
	}

	endpoint := fmt.Sprintf("https://api.mailgun.net/v3/%s/messages", p.domain)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth("api", p.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	body, readErr := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("failed to read mailgun response: %w", readErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close mailgun response body: %w", closeErr)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mailgun API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (p *MailgunProvider) ValidateAPIKey(ctx context.Context) error {
	endpoint := fmt.Sprintf("https://api.mailgun.net/v4/domains/%s", p.domain)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth("api", p.apiKey)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to validate API key: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("invalid API key: received status %d", resp.StatusCode)
	}
	return nil
}
