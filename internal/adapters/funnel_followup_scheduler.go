package adapters

import (
	"context"

	"noticedesk_backend/internal/followup"
	"noticedesk_backend/internal/funnel/ports"
)

// FunnelFollowUpScheduler adapts the followup client for the funnel.
type FunnelFollowUpScheduler struct {
	client *followup.Client
}

// NewFunnelFollowUpScheduler creates a new follow-up scheduler adapter.
// A nil client is allowed; scheduling becomes a no-op.
func NewFunnelFollowUpScheduler(client *followup.Client) *FunnelFollowUpScheduler {
	return &FunnelFollowUpScheduler{client: client}
}

// ScheduleNudge queues a checkout recovery nudge.
func (a *FunnelFollowUpScheduler) ScheduleNudge(ctx context.Context, params ports.NudgeParams) error {
	return a.client.ScheduleCheckoutNudge(ctx, followup.CheckoutNudgePayload{
		SessionID: params.SessionID.String(),
		LeadID:    params.LeadID.String(),
		Name:      params.Name,
		Phone:     params.Phone,
		OrderID:   params.OrderID,
	})
}

// Compile-time check that FunnelFollowUpScheduler implements ports.FollowUpScheduler.
var _ ports.FollowUpScheduler = (*FunnelFollowUpScheduler)(nil)
