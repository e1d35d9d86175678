// Package analytics forwards funnel and payment events to an external
// collector over HTTP. Delivery is strictly best-effort: a slow or down
// collector never affects the funnel.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"noticedesk_backend/internal/events"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/logger"
)

// Forwarder implements events.Handler and ships each event as one JSON
// document to the collector.
type Forwarder struct {
	url    string
	apiKey string
	http   *http.Client
	log    *logger.Logger
}

type envelope struct {
	Event      string      `json:"event"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// NewForwarder creates the forwarder, or nil when analytics is disabled.
func NewForwarder(cfg config.AnalyticsConfig, log *logger.Logger) *Forwarder {
	if !cfg.IsAnalyticsEnabled() {
		return nil
	}

	return &Forwarder{
		url:    strings.TrimRight(cfg.GetAnalyticsURL(), "/"),
		apiKey: cfg.GetAnalyticsAPIKey(),
		http:   &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

// Register subscribes the forwarder to every funnel and payment event.
// A nil forwarder registers nothing.
func (f *Forwarder) Register(bus events.Bus) {
	if f == nil {
		return
	}

	bus.Subscribe(events.FunnelStarted{}.EventName(), f)
	bus.Subscribe(events.StepCompleted{}.EventName(), f)
	bus.Subscribe(events.LeadCaptured{}.EventName(), f)
	bus.Subscribe(events.ExitIntentShown{}.EventName(), f)
	bus.Subscribe(events.ExitOfferResolved{}.EventName(), f)
	bus.Subscribe(events.PaymentInitiated{}.EventName(), f)
	bus.Subscribe(events.PaymentCompleted{}.EventName(), f)
	bus.Subscribe(events.PaymentFailed{}.EventName(), f)
}

// Handle ships one event. Errors are returned so the bus logs them, but
// the async dispatch means publishers never see them.
func (f *Forwarder) Handle(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(envelope{
		Event:      event.EventName(),
		OccurredAt: time.Now().UTC(),
		Payload:    event,
	})
	if err != nil {
		return fmt.Errorf("marshal analytics event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url+"/events", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("forward analytics event: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("analytics collector returned %d", resp.StatusCode)
	}
	return nil
}

// Compile-time check that Forwarder implements events.Handler.
var _ events.Handler = (*Forwarder)(nil)
