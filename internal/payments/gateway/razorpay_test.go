package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"noticedesk_backend/platform/logger"
)

type testRazorpayConfig struct {
	keyID  string
	secret string
}

func (c testRazorpayConfig) GetRazorpayKeyID() string      { return c.keyID }
func (c testRazorpayConfig) GetRazorpayKeySecret() string  { return c.secret }
func (c testRazorpayConfig) GetCurrency() string           { return "INR" }
func (c testRazorpayConfig) GetMerchantName() string       { return "NoticeDesk" }
func (c testRazorpayConfig) GetCheckoutThemeColor() string { return "#1a56db" }
func (c testRazorpayConfig) IsRazorpayEnabled() bool       { return c.keyID != "" && c.secret != "" }

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	g := NewRazorpay(testRazorpayConfig{keyID: "rzp_test_key", secret: "test_secret"}, logger.New("test"))

	orderID := "order_Nq4Zt1abcdef"
	paymentID := "pay_Nq4Zu9ghijkl"
	valid := sign("test_secret", orderID, paymentID)

	cases := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"valid signature", orderID, paymentID, valid, true},
		{"wrong secret", orderID, paymentID, sign("other_secret", orderID, paymentID), false},
		{"swapped ids", orderID, paymentID, sign("test_secret", paymentID, orderID), false},
		{"tampered order", "order_tampered", paymentID, valid, false},
		{"empty signature", orderID, paymentID, "", false},
		{"empty order id", "", paymentID, valid, false},
		{"empty payment id", orderID, "", valid, false},
		{"truncated signature", orderID, paymentID, valid[:len(valid)-2], false},
	}

	for _, tc := range cases {
		if got := g.VerifySignature(tc.orderID, tc.paymentID, tc.signature); got != tc.want {
			t.Errorf("%s: VerifySignature = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestGatewayNotReadyWithoutCredentials(t *testing.T) {
	g := NewRazorpay(testRazorpayConfig{}, logger.New("test"))

	if g.Ready() {
		t.Fatal("Ready() = true without credentials")
	}
	if g.VerifySignature("order_1", "pay_1", sign("", "order_1", "pay_1")) {
		t.Fatal("signature verified without a configured secret")
	}
}
