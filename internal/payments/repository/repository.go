package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"noticedesk_backend/platform/apperr"
)

const paymentNotFoundMessage = "payment not found"

const paymentColumns = `id, session_id, lead_id, order_id, payment_id, amount_paise,
	currency, status, failure_note, created_at, updated_at`

// Repo implements the payments repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new payments repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create records a freshly created gateway order.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Payment, error) {
	query := fmt.Sprintf(`
		INSERT INTO payments (session_id, lead_id, order_id, amount_paise, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, paymentColumns)

	payment, err := scanPayment(r.pool.QueryRow(ctx, query,
		params.SessionID, params.LeadID, params.OrderID, params.AmountPaise, params.Currency))
	if err != nil {
		return Payment{}, fmt.Errorf("create payment: %w", err)
	}
	return payment, nil
}

// GetByOrderID retrieves a payment by its gateway order id.
func (r *Repo) GetByOrderID(ctx context.Context, orderID string) (Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE order_id = $1`, paymentColumns)

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, apperr.NotFound(paymentNotFoundMessage)
		}
		return Payment{}, fmt.Errorf("get payment by order id: %w", err)
	}
	return payment, nil
}

// MarkPaid transitions a created payment to paid. Payments already in a
// terminal status are left untouched so a replayed verification cannot
// overwrite the recorded outcome.
func (r *Repo) MarkPaid(ctx context.Context, orderID, paymentID string) (Payment, error) {
	query := fmt.Sprintf(`
		UPDATE payments
		SET status = $2, payment_id = $3, updated_at = now()
		WHERE order_id = $1 AND status = $4
		RETURNING %s`, paymentColumns)

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, orderID, StatusPaid, paymentID, StatusCreated))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.GetByOrderID(ctx, orderID)
		}
		return Payment{}, fmt.Errorf("mark payment paid: %w", err)
	}
	return payment, nil
}

// MarkTerminal moves a created payment to cancelled, failed, or
// verification_failed. Already-terminal payments are returned unchanged.
func (r *Repo) MarkTerminal(ctx context.Context, orderID, status, failureNote string) (Payment, error) {
	switch status {
	case StatusCancelled, StatusFailed, StatusVerificationFailed:
	default:
		return Payment{}, apperr.Validation("not a terminal payment status")
	}

	query := fmt.Sprintf(`
		UPDATE payments
		SET status = $2, failure_note = $3, updated_at = now()
		WHERE order_id = $1 AND status = $4
		RETURNING %s`, paymentColumns)

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, orderID, status, failureNote, StatusCreated))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.GetByOrderID(ctx, orderID)
		}
		return Payment{}, fmt.Errorf("mark payment terminal: %w", err)
	}
	return payment, nil
}

// List lists payments for the admin surface.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Payment, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payments WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
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
		SELECT %s FROM payments
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, paymentColumns, whereClause, argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, total, rows.Err()
}

func scanPayment(row pgx.Row) (Payment, error) {
	var payment Payment
	var paymentID, failureNote *string
	var createdAt, updatedAt time.Time

	if err := row.Scan(
		&payment.ID, &payment.SessionID, &payment.LeadID, &payment.OrderID, &paymentID,
		&payment.AmountPaise, &payment.Currency, &payment.Status, &failureNote, &createdAt, &updatedAt,
	); err != nil {
		return Payment{}, err
	}

	if paymentID != nil {
		payment.PaymentID = *paymentID
	}
	if failureNote != nil {
		payment.FailureNote = *failureNote
	}
	payment.CreatedAt = createdAt.Format(time.RFC3339)
	payment.UpdatedAt = updatedAt.Format(time.RFC3339)
	return payment, nil
}
