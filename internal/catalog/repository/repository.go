package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"noticedesk_backend/platform/apperr"
)

const (
	noticeTypeNotFoundMessage = "notice type not found"
	planNotFoundMessage       = "plan not found"
)

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ListNoticeTypes lists notice types ordered for the funnel dropdown.
func (r *Repo) ListNoticeTypes(ctx context.Context, includeInactive bool) ([]NoticeType, error) {
	query := `
		SELECT id, slug, label, description, sort_order, active, created_at, updated_at
		FROM catalog_notice_types`
	if !includeInactive {
		query += ` WHERE active`
	}
	query += ` ORDER BY sort_order, label`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notice types: %w", err)
	}
	defer rows.Close()

	var types []NoticeType
	for rows.Next() {
		nt, err := scanNoticeType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notice type: %w", err)
		}
		types = append(types, nt)
	}
	return types, rows.Err()
}

// GetNoticeTypeBySlug retrieves a notice type by its slug.
func (r *Repo) GetNoticeTypeBySlug(ctx context.Context, slug string) (NoticeType, error) {
	query := `
		SELECT id, slug, label, description, sort_order, active, created_at, updated_at
		FROM catalog_notice_types
		WHERE slug = $1`

	nt, err := scanNoticeType(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NoticeType{}, apperr.NotFound(noticeTypeNotFoundMessage)
		}
		return NoticeType{}, fmt.Errorf("get notice type by slug: %w", err)
	}
	return nt, nil
}

// CreateNoticeType inserts a notice type.
func (r *Repo) CreateNoticeType(ctx context.Context, params CreateNoticeTypeParams) (NoticeType, error) {
	query := `
		INSERT INTO catalog_notice_types (slug, label, description, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, slug, label, description, sort_order, active, created_at, updated_at`

	nt, err := scanNoticeType(r.pool.QueryRow(ctx, query,
		params.Slug, params.Label, params.Description, params.SortOrder))
	if err != nil {
		return NoticeType{}, fmt.Errorf("create notice type: %w", err)
	}
	return nt, nil
}

// UpdateNoticeType updates a notice type.
func (r *Repo) UpdateNoticeType(ctx context.Context, params UpdateNoticeTypeParams) (NoticeType, error) {
	query := `
		UPDATE catalog_notice_types
		SET label = COALESCE($2, label),
			description = COALESCE($3, description),
			sort_order = COALESCE($4, sort_order),
			active = COALESCE($5, active),
			updated_at = now()
		WHERE id = $1
		RETURNING id, slug, label, description, sort_order, active, created_at, updated_at`

	nt, err := scanNoticeType(r.pool.QueryRow(ctx, query,
		params.ID, params.Label, params.Description, params.SortOrder, params.Active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NoticeType{}, apperr.NotFound(noticeTypeNotFoundMessage)
		}
		return NoticeType{}, fmt.Errorf("update notice type: %w", err)
	}
	return nt, nil
}

// ListPlans lists plans.
func (r *Repo) ListPlans(ctx context.Context, includeInactive bool) ([]Plan, error) {
	query := `
		SELECT id, code, name, description, amount_paise, discount_amount_paise, currency, active, created_at, updated_at
		FROM catalog_plans`
	if !includeInactive {
		query += ` WHERE active`
	}
	query += ` ORDER BY amount_paise`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// GetPlanByCode retrieves a plan by its stable code.
func (r *Repo) GetPlanByCode(ctx context.Context, code string) (Plan, error) {
	query := `
		SELECT id, code, name, description, amount_paise, discount_amount_paise, currency, active, created_at, updated_at
		FROM catalog_plans
		WHERE code = $1`

	plan, err := scanPlan(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, apperr.NotFound(planNotFoundMessage)
		}
		return Plan{}, fmt.Errorf("get plan by code: %w", err)
	}
	return plan, nil
}

// UpdatePlan updates a plan's pricing or visibility.
func (r *Repo) UpdatePlan(ctx context.Context, params UpdatePlanParams) (Plan, error) {
	query := `
		UPDATE catalog_plans
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			amount_paise = COALESCE($4, amount_paise),
			discount_amount_paise = COALESCE($5, discount_amount_paise),
			active = COALESCE($6, active),
			updated_at = now()
		WHERE code = $1
		RETURNING id, code, name, description, amount_paise, discount_amount_paise, currency, active, created_at, updated_at`

	plan, err := scanPlan(r.pool.QueryRow(ctx, query,
		params.Code, params.Name, params.Description, params.AmountPaise, params.DiscountAmountPaise, params.Active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, apperr.NotFound(planNotFoundMessage)
		}
		return Plan{}, fmt.Errorf("update plan: %w", err)
	}
	return plan, nil
}

func scanNoticeType(row pgx.Row) (NoticeType, error) {
	var nt NoticeType
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&nt.ID, &nt.Slug, &nt.Label, &nt.Description, &nt.SortOrder, &nt.Active, &createdAt, &updatedAt,
	); err != nil {
		return NoticeType{}, err
	}
	nt.CreatedAt = createdAt.Format(time.RFC3339)
	nt.UpdatedAt = updatedAt.Format(time.RFC3339)
	return nt, nil
}

func scanPlan(row pgx.Row) (Plan, error) {
	var plan Plan
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&plan.ID, &plan.Code, &plan.Name, &plan.Description, &plan.AmountPaise,
		&plan.DiscountAmountPaise, &plan.Currency, &plan.Active, &createdAt, &updatedAt,
	); err != nil {
		return Plan{}, err
	}
	plan.CreatedAt = createdAt.Format(time.RFC3339)
	plan.UpdatedAt = updatedAt.Format(time.RFC3339)
	return plan, nil
}
