package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gatepass/gatepass/internal/domain"
	"github.com/gatepass/gatepass/internal/usecase"
)

// WebhookNotifier posts a JSON payload to a configured endpoint after an
// approval workflow transition. It is wired behind the usecase Notifier
// port; a missing URL disables it at construction instead.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type webhookPayload struct {
	Action          string    `json:"action"`
	RecordID        string    `json:"recordId"`
	EventID         string    `json:"eventId"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email,omitempty"`
	Role            string    `json:"role"`
	Status          string    `json:"status"`
	BadgeNumber     string    `json:"badgeNumber,omitempty"`
	AccreditationID string    `json:"accreditationId,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, rec domain.AccreditationRecord, action string) error {
	payload := webhookPayload{
		Action:          action,
		RecordID:        rec.ID,
		EventID:         rec.EventID,
		FullName:        rec.FirstName + " " + rec.LastName,
		Email:           rec.Email,
		Role:            rec.Role,
		Status:          string(rec.Status),
		BadgeNumber:     rec.BadgeNumber,
		AccreditationID: rec.AccreditationID,
		OccurredAt:      time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

var _ usecase.Notifier = (*WebhookNotifier)(nil)
