package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"noticedesk_backend/internal/funnel/ports"
	leadsrepo "noticedesk_backend/internal/leads/repository"
	leadssvc "noticedesk_backend/internal/leads/service"
)

// FunnelLeadWriter adapts the leads service for the funnel. A details-step
// submission becomes a lead create (or duplicate absorption) followed by a
// case-details update on the resolved lead.
type FunnelLeadWriter struct {
	svc *leadssvc.Service
}

// NewFunnelLeadWriter creates a new lead writer adapter.
func NewFunnelLeadWriter(svc *leadssvc.Service) *FunnelLeadWriter {
	return &FunnelLeadWriter{svc: svc}
}

// Submit captures the lead and attaches the case details. The returned id
// is the lead the submission resolved to, whether freshly created or an
// absorbed duplicate.
func (a *FunnelLeadWriter) Submit(ctx context.Context, params ports.SubmitLeadParams) (ports.LeadResult, error) {
	sessionID := params.SessionID
	result, err := a.svc.Submit(ctx, leadssvc.SubmitParams{
		Name:       params.Name,
		Phone:      params.Phone,
		NoticeType: params.NoticeType,
		Source:     params.Source,
		SessionID:  &sessionID,
	})
	if err != nil {
		return ports.LeadResult{}, fmt.Errorf("lead adapter: submit: %w", err)
	}

	if _, err := a.svc.AttachCaseDetails(ctx, leadsrepo.CaseDetailsParams{
		ID:              result.Lead.ID,
		City:            params.City,
		CaseDescription: params.Description,
	}); err != nil {
		return ports.LeadResult{}, fmt.Errorf("lead adapter: attach case details: %w", err)
	}

	return ports.LeadResult{LeadID: result.Lead.ID, Duplicate: result.Duplicate}, nil
}

// MarkPaid transitions the lead to paid after a verified payment.
func (a *FunnelLeadWriter) MarkPaid(ctx context.Context, leadID uuid.UUID, orderID string) error {
	if _, err := a.svc.MarkPaid(ctx, leadID, orderID); err != nil {
		return fmt.Errorf("lead adapter: mark paid: %w", err)
	}
	return nil
}

// Compile-time check that FunnelLeadWriter implements ports.LeadWriter.
var _ ports.LeadWriter = (*FunnelLeadWriter)(nil)
