package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"noticedesk_backend/internal/events"
	"noticedesk_backend/internal/funnel/domain"
	"noticedesk_backend/internal/funnel/ports"
	"noticedesk_backend/internal/funnel/session"
	"noticedesk_backend/platform/apperr"
	"noticedesk_backend/platform/logger"
)

// ============================================================================
// Fake ports
// ============================================================================

type fakeLeadWriter struct {
	mu        sync.Mutex
	submits   int
	duplicate bool
	leadID    uuid.UUID
	paid      map[uuid.UUID]string
}

func newFakeLeadWriter() *fakeLeadWriter {
	return &fakeLeadWriter{leadID: uuid.New(), paid: make(map[uuid.UUID]string)}
}

func (f *fakeLeadWriter) Submit(ctx context.Context, params ports.SubmitLeadParams) (ports.LeadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	return ports.LeadResult{LeadID: f.leadID, Duplicate: f.duplicate}, nil
}

func (f *fakeLeadWriter) MarkPaid(ctx context.Context, leadID uuid.UUID, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paid[leadID] = orderID
	return nil
}

type fakePaymentPort struct {
	mu        sync.Mutex
	ready     bool
	orders    int
	orderErr  error
	verified  bool
	verifyErr error
	cancelled []string
	failed    []string
}

func (f *fakePaymentPort) Ready() bool { return f.ready }

func (f *fakePaymentPort) CreateOrder(ctx context.Context, params ports.CreateOrderParams) (ports.CheckoutConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders++
	if f.orderErr != nil {
		return ports.CheckoutConfig{}, f.orderErr
	}
	return ports.CheckoutConfig{
		Key:         "rzp_test_key",
		AmountPaise: params.AmountPaise,
		Currency:    "INR",
		Name:        "NoticeDesk",
		OrderID:     "order_test_1",
		Prefill:     params.Prefill,
		Notes:       params.Notes,
	}, nil
}

func (f *fakePaymentPort) Verify(ctx context.Context, params ports.VerifyParams) (bool, error) {
	return f.verified, f.verifyErr
}

func (f *fakePaymentPort) RecordCancelled(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, orderID)
	return nil
}

func (f *fakePaymentPort) RecordFailed(ctx context.Context, orderID, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, orderID)
	return nil
}

type fakeCatalog struct{}

func (fakeCatalog) PlanPricing(ctx context.Context, planCode string) (ports.PlanPricing, error) {
	if planCode != "notice-draft" {
		return ports.PlanPricing{}, apperr.NotFound("plan not found")
	}
	return ports.PlanPricing{
		Code:              "notice-draft",
		Name:              "Legal Notice Drafting",
		BasePrice:         499,
		DiscountPrice:     299,
		ConsultationPrice: 99,
	}, nil
}

func (fakeCatalog) NoticeTypeExists(ctx context.Context, slug string) (bool, error) {
	return slug == "money-recovery" || slug == "other", nil
}

type fakeScheduler struct {
	mu     sync.Mutex
	nudges []ports.NudgeParams
}

func (f *fakeScheduler) ScheduleNudge(ctx context.Context, params ports.NudgeParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nudges = append(f.nudges, params)
	return nil
}

// ============================================================================
// Harness
// ============================================================================

type harness struct {
	svc      *Service
	leads    *fakeLeadWriter
	payments *fakePaymentPort
	nudges   *fakeScheduler
}

type testFunnelConfig struct{}

func (testFunnelConfig) GetSessionTTL() time.Duration  { return time.Hour }
func (testFunnelConfig) GetPhoneRegion() string        { return "IN" }
func (testFunnelConfig) GetSuccessRedirectURL() string { return "/payment-success" }

func newHarness(t *testing.T) *harness {
	t.Helper()

	log := logger.New("test")
	leads := newFakeLeadWriter()
	payments := &fakePaymentPort{ready: true}
	nudges := &fakeScheduler{}
	store := session.NewStore(time.Hour, log)
	bus := events.NewInMemoryBus(log)

	svc := New(store, leads, payments, fakeCatalog{}, nudges, bus, testFunnelConfig{}, log)
	return &harness{svc: svc, leads: leads, payments: payments, nudges: nudges}
}

func (h *harness) startSession(t *testing.T) domain.FormSession {
	t.Helper()
	sess, err := h.svc.Start(context.Background(), StartParams{Source: "test"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return sess
}

func (h *harness) reachPayment(t *testing.T) domain.FormSession {
	t.Helper()
	sess := h.startSession(t)

	var err error
	sess, err = h.svc.SubmitContact(context.Background(), sess.ID, ContactParams{
		FullName: "Asha Verma",
		Phone:    "9876543210",
	})
	if err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}

	sess, err = h.svc.SubmitDetails(context.Background(), sess.ID, DetailsParams{
		NoticeType:  "money-recovery",
		Description: "unpaid invoice of 50k",
		City:        "Pune",
	})
	if err != nil {
		t.Fatalf("SubmitDetails: %v", err)
	}
	return sess
}

// ============================================================================
// Tests
// ============================================================================

func TestStartResolvesPlanPricing(t *testing.T) {
	h := newHarness(t)
	sess := h.startSession(t)

	if sess.Pricing.BasePrice != 499 || sess.Pricing.CurrentPrice != 499 {
		t.Fatalf("pricing = %+v", sess.Pricing)
	}
	if sess.Offers.DiscountPrice != 299 || sess.Offers.ConsultationPrice != 99 {
		t.Fatalf("offers = %+v", sess.Offers)
	}
	if sess.CurrentStep != domain.StepContact {
		t.Fatalf("CurrentStep = %v", sess.CurrentStep)
	}
}

func TestSubmitContactValidation(t *testing.T) {
	h := newHarness(t)
	sess := h.startSession(t)

	cases := []struct {
		name   string
		params ContactParams
	}{
		{"short name", ContactParams{FullName: "A", Phone: "9876543210"}},
		{"blank name", ContactParams{FullName: "   ", Phone: "9876543210"}},
		{"bad phone", ContactParams{FullName: "Asha Verma", Phone: "12"}},
		{"letters in phone", ContactParams{FullName: "Asha Verma", Phone: "not-a-phone"}},
		{"ten digits but invalid prefix", ContactParams{FullName: "Asha Verma", Phone: "1234567890"}},
	}
	for _, tc := range cases {
		if _, err := h.svc.SubmitContact(context.Background(), sess.ID, tc.params); !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("%s: err = %v, want validation", tc.name, err)
		}
	}

	// Valid input normalizes the phone to E.164.
	got, err := h.svc.SubmitContact(context.Background(), sess.ID, ContactParams{
		FullName: "  Asha Verma  ",
		Phone:    "9876543210",
	})
	if err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	if got.Contact.FullName != "Asha Verma" {
		t.Errorf("FullName = %q", got.Contact.FullName)
	}
	if !strings.HasPrefix(got.Contact.Phone, "+91") {
		t.Errorf("Phone = %q, want E.164 with +91", got.Contact.Phone)
	}
}

func TestSubmitContactCountsNameInRunes(t *testing.T) {
	h := newHarness(t)
	sess := h.startSession(t)

	// One character is one character regardless of encoding width.
	if _, err := h.svc.SubmitContact(context.Background(), sess.ID, ContactParams{
		FullName: "李",
		Phone:    "9876543210",
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("single-rune name: err = %v, want validation", err)
	}

	if _, err := h.svc.SubmitContact(context.Background(), sess.ID, ContactParams{
		FullName: "李华",
		Phone:    "9876543210",
	}); err != nil {
		t.Fatalf("two-rune name rejected: %v", err)
	}
}

func TestSubmitDetailsRejectsUnknownNoticeType(t *testing.T) {
	h := newHarness(t)
	sess := h.startSession(t)
	sess, _ = h.svc.SubmitContact(context.Background(), sess.ID, ContactParams{FullName: "Asha Verma", Phone: "9876543210"})

	_, err := h.svc.SubmitDetails(context.Background(), sess.ID, DetailsParams{
		NoticeType: "no-such-type",
		City:       "Pune",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if h.leads.submits != 0 {
		t.Fatalf("lead submitted despite invalid notice type")
	}
}

func TestResubmitDetailsMakesNoSecondLeadCall(t *testing.T) {
	h := newHarness(t)
	sess := h.reachPayment(t)

	if h.leads.submits != 1 {
		t.Fatalf("submits = %d, want 1", h.leads.submits)
	}

	// Back to details, resubmit: the stored lead id short-circuits.
	if _, err := h.svc.Back(context.Background(), sess.ID); err != nil {
		t.Fatalf("Back: %v", err)
	}
	got, err := h.svc.SubmitDetails(context.Background(), sess.ID, DetailsParams{
		NoticeType: "money-recovery",
		City:       "Mumbai",
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if h.leads.submits != 1 {
		t.Fatalf("submits = %d after resubmit, want 1", h.leads.submits)
	}
	if got.CurrentStep != domain.StepPayment {
		t.Fatalf("CurrentStep = %v", got.CurrentStep)
	}
	if got.Details.City != "Mumbai" {
		t.Fatalf("resubmitted details not applied: %+v", got.Details)
	}
}

func TestDuplicateLeadIsSuccess(t *testing.T) {
	h := newHarness(t)
	h.leads.duplicate = true

	sess := h.reachPayment(t)

	if sess.LeadID == nil || *sess.LeadID != h.leads.leadID {
		t.Fatalf("LeadID = %v, want %v", sess.LeadID, h.leads.leadID)
	}
	if !sess.DuplicateLead {
		t.Fatal("DuplicateLead not set")
	}
	if sess.Notice == nil || sess.Notice.Level != domain.NoticeInfo {
		t.Fatalf("notice = %+v, duplicate must not look like an error", sess.Notice)
	}
	if !strings.Contains(sess.Notice.Message, "already saved") {
		t.Fatalf("notice message = %q", sess.Notice.Message)
	}
}

func TestBeginCheckoutHappyPath(t *testing.T) {
	h := newHarness(t)
	sess := h.reachPayment(t)

	result, err := h.svc.BeginCheckout(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	if result.Session.PaymentState != domain.PaymentAwaitingUserAction {
		t.Fatalf("PaymentState = %v", result.Session.PaymentState)
	}
	if result.Checkout.OrderID != "order_test_1" {
		t.Fatalf("checkout = %+v", result.Checkout)
	}
	if result.Checkout.AmountPaise != 49900 {
		t.Fatalf("AmountPaise = %d, want 49900", result.Checkout.AmountPaise)
	}
	if result.Checkout.Notes["leadId"] == "" || result.Checkout.Notes["discounted"] != "false" {
		t.Fatalf("notes = %+v", result.Checkout.Notes)
	}
}

func TestBeginCheckoutChargesDiscountedPrice(t *testing.T) {
	h := newHarness(t)
	sess := h.reachPayment(t)

	if _, err := h.svc.Close(context.Background(), sess.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := h.svc.SelectCloseReason(context.Background(), sess.ID, "price_too_high"); err != nil {
		t.Fatalf("SelectCloseReason: %v", err)
	}
	if _, err := h.svc.AcceptOffer(context.Background(), sess.ID); err != nil {
		t.Fatalf("AcceptOffer: %v", err)
	}

	result, err := h.svc.BeginCheckout(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	if result.Checkout.AmountPaise != 29900 {
		t.Fatalf("AmountPaise = %d, want 29900 after the 299 offer", result.Checkout.AmountPaise)
	}
	if result.Checkout.Notes["discounted"] != "true" {
		t.Fatalf("notes = %+v", result.Checkout.Notes)
	}
}

func TestBeginCheckoutWhileInFlightIsRejectedWithoutGatewayCall(t *testing.T) {
	h := newHarness(t)
	sess := h.reachPayment(t)

	if _, err := h.svc.BeginCheckout(context.Background(), sess.ID); err != nil {
		t.Fatalf("first BeginCheckout: %v", err)
	}
	if _, err := h.svc.BeginCheckout(context.Background(), sess.ID); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second BeginCheckout: err = %v, want conflict", err)
	}
	if h.payments.orders != 1 {
		t.Fatalf("gateway called %d times, want 1", h.payments.orders)
	}
}

func TestBeginCheckoutGatewayNotReady(t *testing.T) {
	h := newHarness(t)
	h.payments.ready = false
	sess := h.reachPayment(t)

	result, err := h.svc.BeginCheckout(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	if result.Session.PaymentState != domain.PaymentCheckoutUnavailable {
		t.Fatalf("PaymentState = %v", result.Session.PaymentState)
	}
	if h.payments.orders != 0 {
		t.Fatalf("gateway called while not ready")
	}
}

func TestBeginCheckoutOrderFailureIsRecoverable(t *testing.T) {
	h := newHarness(t)
	h.payments.orderErr = apperr.Unavailable("gateway down")
	sess := h.reachPayment(t)

	result, err := h.svc.BeginCheckout(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}
	if result.Session.PaymentState != domain.PaymentFailed {
		t.Fatalf("PaymentState = %v", result.Session.PaymentState)
	}

	// A retry is allowed once the gateway recovers.
	h.payments.orderErr = nil
	retry, err := h.svc.BeginCheckout(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retry.Session.PaymentState != domain.PaymentAwaitingUserAction {
		t.Fatalf("retry PaymentState = %v", retry.Session.PaymentState)
	}
}

func TestCancelCheckoutSchedulesNudge(t *testing.T) {
	h := newHarness(t)
	sess := h.reachPayment(t)
	if _, err := h.svc.BeginCheckout(context.Background(), sess.ID); err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}

	got, err := h.svc.CancelCheckout(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("CancelCheckout: %v", err)
	}
	if got.PaymentState != domain.PaymentCancelled {
		t.Fatalf("PaymentState = %v", got.PaymentState)
	}
	if got.CurrentStep != domain.StepPayment {
		t.Fatalf("CurrentStep = %v, cancellation must keep the payment step", got.CurrentStep)
	}
	if len(h.payments.cancelled) != 1 || h.payments.cancelled[0] != "order_test_1" {
		t.Fatalf("cancelled orders = %v", h.payments.cancelled)
	}
	if len(h.nudges.nudges) != 1 {
		t.Fatalf("nudges = %d, want 1", len(h.nudges.nudges))
	}
	if h.nudges.nudges[0].LeadID != h.leads.leadID {
		t.Fatalf("nudge lead = %v", h.nudges.nudges[0].LeadID)
	}
}

func TestVerifyPaymentSuccess(t *testing.T) {
	h := newHarness(t)
	h.payments.verified = true
	sess := h.reachPayment(t)
	if _, err := h.svc.BeginCheckout(context.Background(), sess.ID); err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}

	got, err := h.svc.VerifyPayment(context.Background(), sess.ID, VerifyCheckoutParams{
		OrderID:   "order_test_1",
		PaymentID: "pay_1",
		Signature: "sig",
	})
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if got.PaymentState != domain.PaymentSucceeded {
		t.Fatalf("PaymentState = %v", got.PaymentState)
	}
	if !strings.Contains(got.RedirectURL, "paymentId=pay_1") {
		t.Fatalf("RedirectURL = %q", got.RedirectURL)
	}
	if h.leads.paid[h.leads.leadID] != "order_test_1" {
		t.Fatalf("lead not marked paid: %v", h.leads.paid)
	}
}

func TestVerifyPaymentFailureEndsInSupportState(t *testing.T) {
	h := newHarness(t)
	h.payments.verified = false
	sess := h.reachPayment(t)
	if _, err := h.svc.BeginCheckout(context.Background(), sess.ID); err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}

	got, err := h.svc.VerifyPayment(context.Background(), sess.ID, VerifyCheckoutParams{
		OrderID:   "order_test_1",
		PaymentID: "pay_1",
		Signature: "forged",
	})
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if got.PaymentState != domain.PaymentFailed {
		t.Fatalf("PaymentState = %v", got.PaymentState)
	}
	if got.RedirectURL != "" {
		t.Fatalf("RedirectURL = %q, failed verification must not redirect", got.RedirectURL)
	}
	if got.Notice == nil || got.Notice.Level != domain.NoticeSupport {
		t.Fatalf("notice = %+v, want contact-support", got.Notice)
	}
	if len(h.leads.paid) != 0 {
		t.Fatalf("lead marked paid on failed verification")
	}
}

func TestVerifyPaymentRejectsForeignOrder(t *testing.T) {
	h := newHarness(t)
	sess := h.reachPayment(t)
	if _, err := h.svc.BeginCheckout(context.Background(), sess.ID); err != nil {
		t.Fatalf("BeginCheckout: %v", err)
	}

	_, err := h.svc.VerifyPayment(context.Background(), sess.ID, VerifyCheckoutParams{
		OrderID:   "order_someone_elses",
		PaymentID: "pay_1",
		Signature: "sig",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Get(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
