// Package service contains catalog business logic.
package service

import (
	"context"

	"noticedesk_backend/internal/catalog/repository"
	"noticedesk_backend/internal/catalog/transport"
	"noticedesk_backend/platform/apperr"
	"noticedesk_backend/platform/logger"
)

// DefaultPlanCode is the plan every funnel session prices against unless
// the frontend selects another one.
const DefaultPlanCode = "notice-draft"

// Service implements catalog business logic.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListNoticeTypes returns the active notice types for the funnel dropdown.
func (s *Service) ListNoticeTypes(ctx context.Context) ([]repository.NoticeType, error) {
	return s.repo.ListNoticeTypes(ctx, false)
}

// ListAllNoticeTypes returns every notice type, including inactive ones.
func (s *Service) ListAllNoticeTypes(ctx context.Context) ([]repository.NoticeType, error) {
	return s.repo.ListNoticeTypes(ctx, true)
}

// GetNoticeTypeBySlug returns a single notice type.
func (s *Service) GetNoticeTypeBySlug(ctx context.Context, slug string) (repository.NoticeType, error) {
	return s.repo.GetNoticeTypeBySlug(ctx, slug)
}

// CreateNoticeType adds a notice type to the catalog.
func (s *Service) CreateNoticeType(ctx context.Context, req transport.CreateNoticeTypeRequest) (repository.NoticeType, error) {
	params := repository.CreateNoticeTypeParams{
		Slug:      req.Slug,
		Label:     req.Label,
		SortOrder: req.SortOrder,
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	return s.repo.CreateNoticeType(ctx, params)
}

// UpdateNoticeType updates a notice type.
func (s *Service) UpdateNoticeType(ctx context.Context, params repository.UpdateNoticeTypeParams) (repository.NoticeType, error) {
	return s.repo.UpdateNoticeType(ctx, params)
}

// ListPlans returns the active plans.
func (s *Service) ListPlans(ctx context.Context) ([]repository.Plan, error) {
	return s.repo.ListPlans(ctx, false)
}

// GetPlanByCode returns a single plan.
func (s *Service) GetPlanByCode(ctx context.Context, code string) (repository.Plan, error) {
	return s.repo.GetPlanByCode(ctx, code)
}

// UpdatePlan updates plan pricing. The discounted price must stay below
// the base price so an applied discount can only ever lower the total.
func (s *Service) UpdatePlan(ctx context.Context, code string, req transport.UpdatePlanRequest) (repository.Plan, error) {
	current, err := s.repo.GetPlanByCode(ctx, code)
	if err != nil {
		return repository.Plan{}, err
	}

	amount := current.AmountPaise
	if req.AmountPaise != nil {
		amount = *req.AmountPaise
	}
	discount := current.DiscountAmountPaise
	if req.DiscountAmountPaise != nil {
		discount = *req.DiscountAmountPaise
	}
	if discount >= amount {
		return repository.Plan{}, apperr.Validation("discounted price must be below the base price")
	}

	plan, err := s.repo.UpdatePlan(ctx, repository.UpdatePlanParams{
		Code:                code,
		Name:                req.Name,
		Description:         req.Description,
		AmountPaise:         req.AmountPaise,
		DiscountAmountPaise: req.DiscountAmountPaise,
		Active:              req.Active,
	})
	if err != nil {
		return repository.Plan{}, err
	}

	s.log.Info("plan updated", "code", plan.Code, "amountPaise", plan.AmountPaise, "discountAmountPaise", plan.DiscountAmountPaise)
	return plan, nil
}
