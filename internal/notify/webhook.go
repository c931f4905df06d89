package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebhookSender posts reminders to a messaging gateway over HTTP. The
// gateway owns the actual delivery channel (SMS, WhatsApp, ...).
type WebhookSender struct {
	url   string
	token string
	http  *http.Client
}

func NewWebhookSender(url string, token string) *WebhookSender {
	return &WebhookSender{
		url:   strings.TrimSpace(url),
		token: strings.TrimSpace(token),
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (s *WebhookSender) ProviderID() string {
	return "webhook"
}

func (s *WebhookSender) Send(ctx context.Context, r Reminder) error {
	if s.url == "" {
		return errors.New("webhook url not configured")
	}
	payload := map[string]string{
		"appointment_id": r.AppointmentID,
		"kind":           r.Kind,
		"to":             r.ClientPhone,
		"channel":        r.Channel,
		"body":           renderBody(r),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func renderBody(r Reminder) string {
	lead := "tomorrow"
	if r.Kind == "1h" {
		lead = "in one hour"
	}
	body := fmt.Sprintf("Hi %s, your %s appointment with %s is %s at %s.",
		r.ClientName, r.ServiceName, r.EmployeeName, lead, r.StartTime.Format("15:04"))
	if r.TenantName != "" {
		body = fmt.Sprintf("[%s] %s", r.TenantName, body)
	}
	return body
}
