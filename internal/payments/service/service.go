// Package service contains payment orchestration logic: gateway order
// creation, checkout option assembly, and signature verification.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"noticedesk_backend/internal/payments/gateway"
	"noticedesk_backend/internal/payments/repository"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/logger"
)

// CheckoutOptions is everything the frontend needs to open the hosted
// checkout for an order. Field names mirror the checkout script options.
type CheckoutOptions struct {
	Key         string            `json:"key"`
	AmountPaise int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	OrderID     string            `json:"order_id"`
	Prefill     map[string]string `json:"prefill,omitempty"`
	Notes       map[string]string `json:"notes,omitempty"`
	ThemeColor  string            `json:"theme_color,omitempty"`
	RedirectURL string            `json:"redirect_url,omitempty"`
}

// CreateOrderParams describes a checkout order for a funnel session.
type CreateOrderParams struct {
	SessionID    uuid.UUID
	LeadID       *uuid.UUID
	AmountPaise  int64
	Prefill      map[string]string
	Notes        map[string]string
}

// VerifyParams carries the checkout callback fields.
type VerifyParams struct {
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyResult is the tagged outcome of a verification attempt. Verified
// is the only field callers may branch on; a false value always comes
// with the payment record showing why.
type VerifyResult struct {
	Verified bool
	Payment  repository.Payment
}

// Service implements payment business logic.
type Service struct {
	repo repository.Repository
	gw   gateway.Gateway
	cfg  config.RazorpayConfig
	fcfg config.FunnelConfig
	log  *logger.Logger
}

// New creates a new payments service.
func New(repo repository.Repository, gw gateway.Gateway, cfg config.RazorpayConfig, fcfg config.FunnelConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, gw: gw, cfg: cfg, fcfg: fcfg, log: log}
}

// receiptFor builds the gateway receipt string. Razorpay caps receipts at
// 40 characters, so only the first id segment goes in; the full session
// id is persisted on the payment record.
func receiptFor(sessionID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("rcpt_%s_%d", sessionID.String()[:8], now.Unix())
}

// GatewayReady reports whether checkout can start at all.
func (s *Service) GatewayReady() bool {
	return s.gw.Ready()
}

// CreateOrder creates a gateway order and persists the payment record.
func (s *Service) CreateOrder(ctx context.Context, params CreateOrderParams) (CheckoutOptions, error) {
	notes := make(map[string]interface{}, len(params.Notes))
	for k, v := range params.Notes {
		notes[k] = v
	}

	order, err := s.gw.CreateOrder(ctx, gateway.CreateOrderParams{
		AmountPaise: params.AmountPaise,
		Currency:    s.cfg.GetCurrency(),
		Receipt:     receiptFor(params.SessionID, time.Now()),
		Notes:       notes,
	})
	if err != nil {
		return CheckoutOptions{}, err
	}

	if _, err := s.repo.Create(ctx, repository.CreateParams{
		SessionID:   params.SessionID,
		LeadID:      params.LeadID,
		OrderID:     order.ID,
		AmountPaise: order.AmountPaise,
		Currency:    order.Currency,
	}); err != nil {
		return CheckoutOptions{}, err
	}

	s.log.PaymentEvent("order created", params.SessionID.String(), order.ID)

	return CheckoutOptions{
		Key:         s.gw.KeyID(),
		AmountPaise: order.AmountPaise,
		Currency:    order.Currency,
		Name:        s.cfg.GetMerchantName(),
		OrderID:     order.ID,
		Prefill:     params.Prefill,
		Notes:       params.Notes,
		ThemeColor:  s.cfg.GetCheckoutThemeColor(),
		RedirectURL: s.fcfg.GetSuccessRedirectURL(),
	}, nil
}

// Verify checks the checkout callback signature and records the outcome.
// A bad signature is not an error: it returns Verified=false with the
// payment moved to verification_failed.
func (s *Service) Verify(ctx context.Context, params VerifyParams) (VerifyResult, error) {
	if !s.gw.VerifySignature(params.OrderID, params.PaymentID, params.Signature) {
		payment, err := s.repo.MarkTerminal(ctx, params.OrderID, repository.StatusVerificationFailed, "signature mismatch")
		if err != nil {
			return VerifyResult{}, err
		}
		s.log.PaymentEvent("verification failed", payment.SessionID.String(), params.OrderID)
		return VerifyResult{Verified: false, Payment: payment}, nil
	}

	payment, err := s.repo.MarkPaid(ctx, params.OrderID, params.PaymentID)
	if err != nil {
		return VerifyResult{}, err
	}
	if payment.Status != repository.StatusPaid {
		// Order was already cancelled or failed; a late callback cannot
		// resurrect it.
		return VerifyResult{Verified: false, Payment: payment}, nil
	}

	s.log.PaymentEvent("payment verified", payment.SessionID.String(), params.OrderID)
	return VerifyResult{Verified: true, Payment: payment}, nil
}

// RecordCancelled marks an order cancelled after the visitor dismissed
// the checkout.
func (s *Service) RecordCancelled(ctx context.Context, orderID string) (repository.Payment, error) {
	payment, err := s.repo.MarkTerminal(ctx, orderID, repository.StatusCancelled, "dismissed by visitor")
	if err != nil {
		return repository.Payment{}, err
	}
	s.log.PaymentEvent("payment cancelled", payment.SessionID.String(), orderID)
	return payment, nil
}

// RecordFailed marks an order failed after the gateway reported an error.
func (s *Service) RecordFailed(ctx context.Context, orderID, note string) (repository.Payment, error) {
	payment, err := s.repo.MarkTerminal(ctx, orderID, repository.StatusFailed, note)
	if err != nil {
		return repository.Payment{}, err
	}
	s.log.PaymentEvent("payment failed", payment.SessionID.String(), orderID)
	return payment, nil
}

// GetByOrderID retrieves a payment record.
func (s *Service) GetByOrderID(ctx context.Context, orderID string) (repository.Payment, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

// List lists payments for the admin surface.
func (s *Service) List(ctx context.Context, params repository.ListParams) ([]repository.Payment, int, error) {
	return s.repo.List(ctx, params)
}
