package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"noticedesk_backend/platform/apperr"
)

const leadNotFoundMessage = "lead not found"

const leadColumns = `id, name, phone, notice_type, city, opposite_party_name, amount_involved,
	case_description, status, source, session_id, paid_order_id, paid_at, created_at, updated_at`

// Repo implements the leads repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a lead from the contact step.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Lead, error) {
	query := fmt.Sprintf(`
		INSERT INTO leads (name, phone, notice_type, source, session_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query,
		params.Name, params.Phone, params.NoticeType, params.Source, params.SessionID))
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

// GetByID retrieves a lead by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1`, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// FindOpenByPhoneAndNoticeType returns the most recent unpaid lead for the
// phone and notice type. Paid leads never match: a returning customer who
// already paid gets a fresh lead.
func (r *Repo) FindOpenByPhoneAndNoticeType(ctx context.Context, phone, noticeType string) (Lead, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE phone = $1 AND notice_type = $2 AND status != $3
		ORDER BY created_at DESC
		LIMIT 1`, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, phone, noticeType, StatusPaid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("find open lead: %w", err)
	}
	return lead, nil
}

// UpdateContact updates the name and phone captured in the contact step.
func (r *Repo) UpdateContact(ctx context.Context, id uuid.UUID, name, phone string) (Lead, error) {
	query := fmt.Sprintf(`
		UPDATE leads
		SET name = $2, phone = $3, updated_at = now()
		WHERE id = $1
		RETURNING %s`, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, name, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("update lead contact: %w", err)
	}
	return lead, nil
}

// UpdateCaseDetails records the case-details step on the lead.
func (r *Repo) UpdateCaseDetails(ctx context.Context, params CaseDetailsParams) (Lead, error) {
	query := fmt.Sprintf(`
		UPDATE leads
		SET city = $2,
			opposite_party_name = $3,
			amount_involved = $4,
			case_description = $5,
			status = CASE WHEN status = '%s' THEN '%s' ELSE status END,
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, StatusNew, StatusDetailsAdded, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query,
		params.ID, params.City, params.OppositePartyName, params.AmountInvolved, params.CaseDescription))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("update lead case details: %w", err)
	}
	return lead, nil
}

// MarkPaid transitions the lead to paid and records the gateway order.
func (r *Repo) MarkPaid(ctx context.Context, id uuid.UUID, orderID string) (Lead, error) {
	query := fmt.Sprintf(`
		UPDATE leads
		SET status = $2, paid_order_id = $3, paid_at = now(), updated_at = now()
		WHERE id = $1
		RETURNING %s`, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, StatusPaid, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("mark lead paid: %w", err)
	}
	return lead, nil
}

// UpdateStatus sets the lead status from the admin surface.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Lead, error) {
	query := fmt.Sprintf(`
		UPDATE leads
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING %s`, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("update lead status: %w", err)
	}
	return lead, nil
}

// List lists leads with filters and pagination for the admin surface.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 25
	}

	query := fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, leadColumns, whereClause, argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	var city, oppositeParty, caseDescription, source, paidOrderID *string
	var sessionID *uuid.UUID
	var paidAt *time.Time
	var createdAt, updatedAt time.Time

	if err := row.Scan(
		&lead.ID, &lead.Name, &lead.Phone, &lead.NoticeType, &city, &oppositeParty, &lead.AmountInvolved,
		&caseDescription, &lead.Status, &source, &sessionID, &paidOrderID, &paidAt, &createdAt, &updatedAt,
	); err != nil {
		return Lead{}, err
	}

	if city != nil {
		lead.City = *city
	}
	if oppositeParty != nil {
		lead.OppositePartyName = *oppositeParty
	}
	if caseDescription != nil {
		lead.CaseDescription = *caseDescription
	}
	if source != nil {
		lead.Source = *source
	}
	if paidOrderID != nil {
		lead.PaidOrderID = *paidOrderID
	}
	lead.SessionID = sessionID
	if paidAt != nil {
		formatted := paidAt.Format(time.RFC3339)
		lead.PaidAt = &formatted
	}
	lead.CreatedAt = createdAt.Format(time.RFC3339)
	lead.UpdatedAt = updatedAt.Format(time.RFC3339)
	return lead, nil
}
