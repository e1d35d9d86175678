// Package gateway wraps the Razorpay SDK behind a small interface so the
// rest of the codebase never touches the SDK's map-based API directly.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"noticedesk_backend/platform/apperr"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/logger"
)

const gatewayUnavailableMessage = "payment gateway is not available, please try again later"

// Order is a created gateway order.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
}

// CreateOrderParams describes the order to create. Amount is in paise.
type CreateOrderParams struct {
	AmountPaise int64
	Currency    string
	Receipt     string
	Notes       map[string]interface{}
}

// Gateway abstracts the payment provider for the funnel and payment services.
type Gateway interface {
	// Ready reports whether the gateway can take payments. Callers must
	// fail closed when this is false instead of queueing work.
	Ready() bool
	CreateOrder(ctx context.Context, params CreateOrderParams) (Order, error)
	// VerifySignature checks the checkout callback signature in constant time.
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// Razorpay implements Gateway against the Razorpay Orders API.
type Razorpay struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
	log       *logger.Logger
}

// NewRazorpay creates the gateway. With missing credentials it still
// constructs, but Ready reports false and order creation fails closed.
func NewRazorpay(cfg config.RazorpayConfig, log *logger.Logger) *Razorpay {
	g := &Razorpay{
		keyID:     cfg.GetRazorpayKeyID(),
		keySecret: cfg.GetRazorpayKeySecret(),
		log:       log,
	}
	if cfg.IsRazorpayEnabled() {
		g.client = razorpay.NewClient(g.keyID, g.keySecret)
	}
	return g
}

// Compile-time check that Razorpay implements Gateway.
var _ Gateway = (*Razorpay)(nil)

// Ready reports whether credentials are configured.
func (g *Razorpay) Ready() bool {
	return g.client != nil
}

// KeyID returns the public key the frontend needs for checkout.
func (g *Razorpay) KeyID() string {
	return g.keyID
}

// CreateOrder creates a gateway order for the given amount in paise.
func (g *Razorpay) CreateOrder(ctx context.Context, params CreateOrderParams) (Order, error) {
	if !g.Ready() {
		return Order{}, apperr.Unavailable(gatewayUnavailableMessage)
	}
	if params.AmountPaise <= 0 {
		return Order{}, apperr.Validation("order amount must be positive")
	}

	data := map[string]interface{}{
		"amount":   params.AmountPaise,
		"currency": params.Currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		data["notes"] = params.Notes
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		g.log.Error("razorpay order creation failed", "error", err)
		return Order{}, apperr.Wrap(apperr.KindUnavailable, gatewayUnavailableMessage, err)
	}

	orderID, _ := body["id"].(string)
	if orderID == "" {
		return Order{}, apperr.Unavailable(gatewayUnavailableMessage)
	}

	return Order{
		ID:          orderID,
		AmountPaise: params.AmountPaise,
		Currency:    params.Currency,
	}, nil
}

// VerifySignature recomputes the checkout signature and compares it in
// constant time. The signed payload is "order_id|payment_id".
func (g *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	if g.keySecret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(g.keySecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
