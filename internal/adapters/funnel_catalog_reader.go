package adapters

import (
	"context"
	"fmt"

	catsvc "noticedesk_backend/internal/catalog/service"
	"noticedesk_backend/internal/funnel/ports"
	"noticedesk_backend/platform/apperr"
)

// consultationPlanCode is the low-commitment plan offered by the
// exit-intent interceptor.
const consultationPlanCode = "consultation"

// FunnelCatalogReader adapts the catalog service for the funnel. Catalog
// prices are stored in paise; the funnel works in whole rupees.
type FunnelCatalogReader struct {
	svc *catsvc.Service
}

// NewFunnelCatalogReader creates a new catalog reader adapter.
func NewFunnelCatalogReader(svc *catsvc.Service) *FunnelCatalogReader {
	return &FunnelCatalogReader{svc: svc}
}

// PlanPricing resolves the plan's price points in whole rupees. The
// consultation price comes from the dedicated consultation plan; when
// that plan is absent the consultation offer simply has no price and the
// session state machine refuses to apply it.
func (a *FunnelCatalogReader) PlanPricing(ctx context.Context, planCode string) (ports.PlanPricing, error) {
	plan, err := a.svc.GetPlanByCode(ctx, planCode)
	if err != nil {
		return ports.PlanPricing{}, fmt.Errorf("catalog adapter: get plan: %w", err)
	}

	pricing := ports.PlanPricing{
		Code:          plan.Code,
		Name:          plan.Name,
		BasePrice:     plan.AmountPaise / 100,
		DiscountPrice: plan.DiscountAmountPaise / 100,
	}

	consultation, err := a.svc.GetPlanByCode(ctx, consultationPlanCode)
	switch {
	case err == nil:
		pricing.ConsultationPrice = consultation.AmountPaise / 100
	case !apperr.Is(err, apperr.KindNotFound):
		return ports.PlanPricing{}, fmt.Errorf("catalog adapter: get consultation plan: %w", err)
	}

	return pricing, nil
}

// NoticeTypeExists reports whether an active notice type with the slug
// exists. Deactivated types fail validation the same as unknown ones.
func (a *FunnelCatalogReader) NoticeTypeExists(ctx context.Context, slug string) (bool, error) {
	nt, err := a.svc.GetNoticeTypeBySlug(ctx, slug)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("catalog adapter: get notice type: %w", err)
	}
	return nt.Active, nil
}

// Compile-time check that FunnelCatalogReader implements ports.CatalogReader.
var _ ports.CatalogReader = (*FunnelCatalogReader)(nil)
