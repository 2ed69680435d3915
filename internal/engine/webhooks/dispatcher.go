package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"taskhub/internal/platform/models"
	"taskhub/internal/platform/repositories"
)

const deliveryTimeout = 10 * time.Second

type Dispatcher struct {
	repo   *repositories.WebhookRepository
	client *http.Client
}

func NewDispatcher(repo *repositories.WebhookRepository) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		client: &http.Client{Timeout: deliveryTimeout},
	}
}

// Dispatch delivers the event to every active org webhook subscribed to
// it. Delivery is fire-and-forget: the caller's mutation has already
// committed, so failures are recorded on the webhook row and logged.
func (d *Dispatcher) Dispatch(event, orgID string, data interface{}) {
	hooks, err := d.repo.ListActiveByOrg(orgID)
	if err != nil {
		log.Error().Err(err).Str("org_id", orgID).Str("event", event).
			Msg("failed to load webhooks for dispatch")
		return
	}

	evt := &models.WebhookEvent{
		ID:        "evt_" + uuid.New().String(),
		Event:     event,
		Timestamp: time.Now().Unix(),
		OrgID:     orgID,
		Data:      data,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal webhook payload")
		return
	}

	for _, wh := range hooks {
		if !wh.Subscribed(event) {
			continue
		}
		go d.deliver(wh, evt, payload)
	}
}

func (d *Dispatcher) deliver(wh *models.Webhook, evt *models.WebhookEvent, payload []byte) {
	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(payload))
	if err != nil {
		d.recordFailure(wh, evt, err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Taskhub-Event", evt.Event)
	req.Header.Set("X-Taskhub-Delivery", evt.ID)
	req.Header.Set("X-Taskhub-Signature", Sign(wh.Secret, payload))

	resp, err := d.client.Do(req)
	if err != nil {
		d.recordFailure(wh, evt, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.recordFailure(wh, evt, fmt.Sprintf("endpoint returned status %d", resp.StatusCode))
		return
	}
	if err := d.repo.MarkDelivered(wh.ID); err != nil {
		log.Error().Err(err).Str("webhook_id", wh.ID).Msg("failed to record webhook delivery")
	}
}

func (d *Dispatcher) recordFailure(wh *models.Webhook, evt *models.WebhookEvent, reason string) {
	log.Warn().Str("webhook_id", wh.ID).Str("event", evt.Event).Str("reason", reason).
		Msg("webhook delivery failed")
	if err := d.repo.UpdateLastError(wh.ID, reason); err != nil {
		log.Error().Err(err).Str("webhook_id", wh.ID).Msg("failed to record webhook failure")
	}
}
