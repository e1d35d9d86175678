package adapters

import (
	"context"
	"fmt"

	"noticedesk_backend/internal/funnel/ports"
	paysvc "noticedesk_backend/internal/payments/service"
)

// FunnelPaymentPort adapts the payments service for the funnel.
type FunnelPaymentPort struct {
	svc *paysvc.Service
}

// NewFunnelPaymentPort creates a new payment port adapter.
func NewFunnelPaymentPort(svc *paysvc.Service) *FunnelPaymentPort {
	return &FunnelPaymentPort{svc: svc}
}

// Ready reports whether the gateway is configured and usable.
func (a *FunnelPaymentPort) Ready() bool {
	return a.svc.GatewayReady()
}

// CreateOrder creates a gateway order and returns the frontend checkout
// configuration.
func (a *FunnelPaymentPort) CreateOrder(ctx context.Context, params ports.CreateOrderParams) (ports.CheckoutConfig, error) {
	leadID := params.LeadID
	opts, err := a.svc.CreateOrder(ctx, paysvc.CreateOrderParams{
		SessionID:   params.SessionID,
		LeadID:      &leadID,
		AmountPaise: params.AmountPaise,
		Prefill:     params.Prefill,
		Notes:       params.Notes,
	})
	if err != nil {
		return ports.CheckoutConfig{}, err
	}

	return ports.CheckoutConfig{
		Key:         opts.Key,
		AmountPaise: opts.AmountPaise,
		Currency:    opts.Currency,
		Name:        opts.Name,
		OrderID:     opts.OrderID,
		Prefill:     opts.Prefill,
		Notes:       opts.Notes,
		ThemeColor:  opts.ThemeColor,
		RedirectURL: opts.RedirectURL,
	}, nil
}

// Verify checks the checkout callback signature. A false result without
// an error means the signature did not match.
func (a *FunnelPaymentPort) Verify(ctx context.Context, params ports.VerifyParams) (bool, error) {
	result, err := a.svc.Verify(ctx, paysvc.VerifyParams{
		OrderID:   params.OrderID,
		PaymentID: params.PaymentID,
		Signature: params.Signature,
	})
	if err != nil {
		return false, fmt.Errorf("payment adapter: verify: %w", err)
	}
	return result.Verified, nil
}

// RecordCancelled marks the order cancelled after the visitor dismissed
// the checkout UI.
func (a *FunnelPaymentPort) RecordCancelled(ctx context.Context, orderID string) error {
	_, err := a.svc.RecordCancelled(ctx, orderID)
	return err
}

// RecordFailed marks the order failed after the gateway reported an error.
func (a *FunnelPaymentPort) RecordFailed(ctx context.Context, orderID, note string) error {
	_, err := a.svc.RecordFailed(ctx, orderID, note)
	return err
}

// Compile-time check that FunnelPaymentPort implements ports.PaymentPort.
var _ ports.PaymentPort = (*FunnelPaymentPort)(nil)
