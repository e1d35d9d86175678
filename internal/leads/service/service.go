// Package service contains lead capture business logic.
package service

import (
	"context"

	"github.com/google/uuid"

	"noticedesk_backend/internal/leads/repository"
	"noticedesk_backend/platform/apperr"
	"noticedesk_backend/platform/logger"
	"noticedesk_backend/platform/phone"
)

// Service implements lead business logic.
type Service struct {
	repo        repository.Repository
	log         *logger.Logger
	phoneRegion string
}

// New creates a new leads service.
func New(repo repository.Repository, log *logger.Logger, phoneRegion string) *Service {
	return &Service{repo: repo, log: log, phoneRegion: phoneRegion}
}

// SubmitParams is the contact-step payload that creates a lead.
type SubmitParams struct {
	Name       string
	Phone      string
	NoticeType string
	Source     string
	SessionID  *uuid.UUID
}

// SubmitResult reports the lead a submission resolved to. Duplicate is
// true when an existing unpaid lead absorbed the submission instead of a
// new row being created.
type SubmitResult struct {
	Lead      repository.Lead
	Duplicate bool
}

// Submit captures a lead from the contact step. Submitting the same phone
// and notice type again while the earlier lead is still unpaid is treated
// as success and returns the existing lead, so retries and double-clicks
// never surface as errors to the visitor.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (SubmitResult, error) {
	normalized := phone.NormalizeE164(params.Phone, s.phoneRegion)
	if normalized == "" {
		return SubmitResult{}, apperr.Validation("invalid phone number")
	}

	existing, err := s.repo.FindOpenByPhoneAndNoticeType(ctx, normalized, params.NoticeType)
	if err == nil {
		s.log.Info("duplicate lead submission absorbed", "leadId", existing.ID, "noticeType", params.NoticeType)
		return SubmitResult{Lead: existing, Duplicate: true}, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return SubmitResult{}, err
	}

	lead, err := s.repo.Create(ctx, repository.CreateParams{
		Name:       params.Name,
		Phone:      normalized,
		NoticeType: params.NoticeType,
		Source:     params.Source,
		SessionID:  params.SessionID,
	})
	if err != nil {
		return SubmitResult{}, err
	}

	s.log.Info("lead created", "leadId", lead.ID, "noticeType", lead.NoticeType)
	return SubmitResult{Lead: lead}, nil
}

// UpdateContact rewrites the lead's name and phone after the visitor edits
// the contact step.
func (s *Service) UpdateContact(ctx context.Context, id uuid.UUID, name, rawPhone string) (repository.Lead, error) {
	normalized := phone.NormalizeE164(rawPhone, s.phoneRegion)
	if normalized == "" {
		return repository.Lead{}, apperr.Validation("invalid phone number")
	}
	return s.repo.UpdateContact(ctx, id, name, normalized)
}

// AttachCaseDetails records the case-details step on the lead.
func (s *Service) AttachCaseDetails(ctx context.Context, params repository.CaseDetailsParams) (repository.Lead, error) {
	return s.repo.UpdateCaseDetails(ctx, params)
}

// MarkPaid transitions the lead to paid once a payment is verified.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, orderID string) (repository.Lead, error) {
	lead, err := s.repo.MarkPaid(ctx, id, orderID)
	if err != nil {
		return repository.Lead{}, err
	}
	s.log.Info("lead marked paid", "leadId", lead.ID, "orderId", orderID)
	return lead, nil
}

// GetByID retrieves a lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// List lists leads for the admin surface.
func (s *Service) List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	return s.repo.List(ctx, params)
}

// UpdateStatus sets a lead's status from the admin surface.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (repository.Lead, error) {
	switch status {
	case repository.StatusNew, repository.StatusDetailsAdded, repository.StatusPaid,
		repository.StatusContacted, repository.StatusClosed:
	default:
		return repository.Lead{}, apperr.Validation("unknown lead status")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
