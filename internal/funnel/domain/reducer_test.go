package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"noticedesk_backend/platform/apperr"
)

func newTestSession() FormSession {
	return NewSession(
		uuid.New(),
		"notice-draft",
		"Legal Notice Drafting",
		"landing-page",
		NewPricing(499),
		Offers{DiscountPrice: 299, ConsultationPrice: 99},
		time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
	)
}

// sessionAtPayment walks a fresh session through the first two steps.
func sessionAtPayment(t *testing.T) FormSession {
	t.Helper()

	s := newTestSession()
	s, err := Apply(s, ContactSubmitted{Contact: ContactInfo{
		FullName: "Asha Verma", Phone: "+919876543210", CountryCode: "IN",
	}})
	if err != nil {
		t.Fatalf("contact step: %v", err)
	}

	leadID := uuid.New()
	s, err = Apply(s, DetailsSubmitted{
		Details: CaseDetails{NoticeType: "money-recovery", Description: "unpaid invoice", City: "Pune"},
		LeadID:  &leadID,
	})
	if err != nil {
		t.Fatalf("details step: %v", err)
	}
	return s
}

func TestHappyPathToVerifiedPayment(t *testing.T) {
	s := sessionAtPayment(t)

	if s.CurrentStep != StepPayment {
		t.Fatalf("CurrentStep = %v, want %v", s.CurrentStep, StepPayment)
	}
	if s.LeadID == nil {
		t.Fatal("LeadID not recorded after details step")
	}

	s, err := Apply(s, CheckoutStarted{})
	if err != nil {
		t.Fatalf("CheckoutStarted: %v", err)
	}
	if s.PaymentState != PaymentOrderCreating {
		t.Fatalf("PaymentState = %v, want %v", s.PaymentState, PaymentOrderCreating)
	}

	s, err = Apply(s, OrderCreated{OrderID: "order_abc123"})
	if err != nil {
		t.Fatalf("OrderCreated: %v", err)
	}
	if s.PaymentState != PaymentAwaitingUserAction || s.OrderID != "order_abc123" {
		t.Fatalf("after OrderCreated: state=%v order=%q", s.PaymentState, s.OrderID)
	}

	s, err = Apply(s, VerificationStarted{PaymentID: "pay_xyz"})
	if err != nil {
		t.Fatalf("VerificationStarted: %v", err)
	}

	s, err = Apply(s, VerificationSucceeded{RedirectURL: "/payment-success?paymentId=pay_xyz"})
	if err != nil {
		t.Fatalf("VerificationSucceeded: %v", err)
	}
	if s.PaymentState != PaymentSucceeded {
		t.Fatalf("PaymentState = %v, want %v", s.PaymentState, PaymentSucceeded)
	}
	if s.RedirectURL == "" {
		t.Fatal("RedirectURL missing after verified payment")
	}
}

func TestStepsMustBeTakenInOrder(t *testing.T) {
	s := newTestSession()

	if _, err := Apply(s, DetailsSubmitted{Details: CaseDetails{NoticeType: "other", City: "Pune"}}); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("details before contact: err = %v, want conflict", err)
	}
	if _, err := Apply(s, CheckoutStarted{}); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("checkout before payment step: err = %v, want conflict", err)
	}

	// Resubmitting the contact step after it completed is refused.
	s = sessionAtPayment(t)
	if _, err := Apply(s, ContactSubmitted{Contact: ContactInfo{FullName: "X Y", Phone: "+911111111111"}}); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("contact after payment step reached: err = %v, want conflict", err)
	}
}

func TestPriceOnlyMovesDownOnce(t *testing.T) {
	s := sessionAtPayment(t)

	if s.Pricing.BasePrice != 499 || s.Pricing.CurrentPrice != 499 || s.Pricing.IsDiscounted {
		t.Fatalf("initial pricing = %+v", s.Pricing)
	}
	if s.Pricing.AmountPaise() != 49900 {
		t.Fatalf("AmountPaise() = %d, want 49900", s.Pricing.AmountPaise())
	}

	s, err := Apply(s, CloseAttempted{})
	if err != nil {
		t.Fatalf("CloseAttempted: %v", err)
	}
	now := time.Date(2025, 8, 1, 10, 5, 0, 0, time.UTC)
	s, err = Apply(s, ReasonSelected{Reason: ReasonPriceTooHigh, Now: now})
	if err != nil {
		t.Fatalf("ReasonSelected: %v", err)
	}
	if s.ExitIntent.Stage != ExitDiscountOffer || s.ExitIntent.OfferPrice != 299 {
		t.Fatalf("exit intent = %+v, want discount offer at 299", s.ExitIntent)
	}
	if s.ExitIntent.OfferExpiresAt == nil || !s.ExitIntent.OfferExpiresAt.Equal(now.Add(OfferCountdown)) {
		t.Fatalf("OfferExpiresAt = %v", s.ExitIntent.OfferExpiresAt)
	}

	s, err = Apply(s, OfferAccepted{})
	if err != nil {
		t.Fatalf("OfferAccepted: %v", err)
	}
	if s.Pricing.CurrentPrice != 299 || !s.Pricing.IsDiscounted || s.Pricing.BasePrice != 499 {
		t.Fatalf("pricing after offer = %+v", s.Pricing)
	}
	if s.Pricing.AmountPaise() != 29900 {
		t.Fatalf("AmountPaise() = %d, want 29900", s.Pricing.AmountPaise())
	}
	if s.Pricing.Savings() != 200 {
		t.Fatalf("Savings() = %d, want 200", s.Pricing.Savings())
	}
	if s.CurrentStep != StepPayment {
		t.Fatalf("CurrentStep = %v, want payment after offer accepted", s.CurrentStep)
	}

	// A raised price is never applied.
	if _, err := s.Pricing.WithOffer(999); err == nil {
		t.Error("WithOffer(999) above base should be rejected")
	}
	if _, err := s.Pricing.WithOffer(0); err == nil {
		t.Error("WithOffer(0) should be rejected")
	}
}

func TestExitIntentShowsExactlyOnce(t *testing.T) {
	s := sessionAtPayment(t)

	s, err := Apply(s, CloseAttempted{})
	if err != nil {
		t.Fatalf("first CloseAttempted: %v", err)
	}
	if s.ExitIntent.Stage != ExitReasonCapture || !s.ExitIntent.HasBeenShown {
		t.Fatalf("exit intent after first close = %+v", s.ExitIntent)
	}
	if s.CurrentStep != StepPayment {
		t.Fatalf("CurrentStep = %v, interception must not move the visitor", s.CurrentStep)
	}

	// Decline the discount offer: the dismissal is honored.
	s, err = Apply(s, ReasonSelected{Reason: ReasonComparingOptions, Now: time.Now()})
	if err != nil {
		t.Fatalf("ReasonSelected: %v", err)
	}
	s, err = Apply(s, OfferDeclined{})
	if err != nil {
		t.Fatalf("OfferDeclined: %v", err)
	}
	if s.CurrentStep != StepContact || s.ExitIntent.Stage != ExitHidden {
		t.Fatalf("after decline: step=%v stage=%v", s.CurrentStep, s.ExitIntent.Stage)
	}

	// Walk back to payment; the second close attempt falls straight through.
	s, err = Apply(s, ContactSubmitted{Contact: ContactInfo{FullName: "Asha Verma", Phone: "+919876543210"}})
	if err != nil {
		t.Fatalf("re-contact: %v", err)
	}
	s, err = Apply(s, DetailsSubmitted{Details: s.Details, LeadID: s.LeadID, Duplicate: true})
	if err != nil {
		t.Fatalf("re-details: %v", err)
	}
	s, err = Apply(s, CloseAttempted{})
	if err != nil {
		t.Fatalf("second CloseAttempted: %v", err)
	}
	if s.ExitIntent.Stage != ExitHidden {
		t.Fatalf("second close must not reopen the dialog, stage = %v", s.ExitIntent.Stage)
	}
	if s.CurrentStep != StepContact {
		t.Fatalf("second close should dismiss to the contact step, step = %v", s.CurrentStep)
	}
}

func TestCloseReasonBranches(t *testing.T) {
	cases := []struct {
		reason CloseReason
		want   ExitStage
	}{
		{ReasonPriceTooHigh, ExitDiscountOffer},
		{ReasonComparingOptions, ExitDiscountOffer},
		{ReasonNeedsDiscussion, ExitConsultationOffer},
		{ReasonNotSure, ExitConsultationOffer},
		{ReasonNeedsTime, ExitConsultationOffer},
		{ReasonDistrust, ExitConsultationOffer},
		{CloseReason("something-else"), ExitHidden},
	}

	for _, tc := range cases {
		s := sessionAtPayment(t)
		s, err := Apply(s, CloseAttempted{})
		if err != nil {
			t.Fatalf("%s: CloseAttempted: %v", tc.reason, err)
		}
		s, err = Apply(s, ReasonSelected{Reason: tc.reason, Now: time.Now()})
		if err != nil {
			t.Fatalf("%s: ReasonSelected: %v", tc.reason, err)
		}
		if s.ExitIntent.Stage != tc.want {
			t.Errorf("reason %q: stage = %v, want %v", tc.reason, s.ExitIntent.Stage, tc.want)
		}
		if tc.want == ExitHidden && s.CurrentStep != StepContact {
			t.Errorf("reason %q: unmapped reason should dismiss, step = %v", tc.reason, s.CurrentStep)
		}
	}
}

func TestSkipOnlyFromConsultationOffer(t *testing.T) {
	s := sessionAtPayment(t)
	s, _ = Apply(s, CloseAttempted{})
	s, _ = Apply(s, ReasonSelected{Reason: ReasonPriceTooHigh, Now: time.Now()})

	if _, err := Apply(s, OfferSkipped{}); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("skip from discount offer: err = %v, want conflict", err)
	}

	s = sessionAtPayment(t)
	s, _ = Apply(s, CloseAttempted{})
	s, _ = Apply(s, ReasonSelected{Reason: ReasonNeedsTime, Now: time.Now()})

	s, err := Apply(s, OfferSkipped{})
	if err != nil {
		t.Fatalf("skip from consultation offer: %v", err)
	}
	if s.CurrentStep != StepPayment || s.Pricing.CurrentPrice != 499 {
		t.Fatalf("after skip: step=%v price=%d, want payment at full price", s.CurrentStep, s.Pricing.CurrentPrice)
	}
}

func TestNoBackNavigationWhileOrderInFlight(t *testing.T) {
	inFlight := []Event{CheckoutStarted{}, OrderCreated{OrderID: "order_1"}, VerificationStarted{PaymentID: "pay_1"}}

	s := sessionAtPayment(t)
	for i, ev := range inFlight {
		var err error
		s, err = Apply(s, ev)
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}

		if _, err := Apply(s, BackRequested{}); !apperr.Is(err, apperr.KindConflict) {
			t.Errorf("state %v: back allowed, err = %v", s.PaymentState, err)
		}
		if _, err := Apply(s, ContactEditRequested{}); !apperr.Is(err, apperr.KindConflict) {
			t.Errorf("state %v: contact edit allowed, err = %v", s.PaymentState, err)
		}
		if _, err := Apply(s, CloseAttempted{}); !apperr.Is(err, apperr.KindConflict) {
			t.Errorf("state %v: close allowed, err = %v", s.PaymentState, err)
		}
		if _, err := Apply(s, CheckoutStarted{}); !apperr.Is(err, apperr.KindConflict) {
			t.Errorf("state %v: second checkout allowed, err = %v", s.PaymentState, err)
		}
	}
}

func TestCancelledCheckoutIsResumable(t *testing.T) {
	s := sessionAtPayment(t)
	s, _ = Apply(s, CheckoutStarted{})
	s, _ = Apply(s, OrderCreated{OrderID: "order_1"})

	s, err := Apply(s, CheckoutDismissed{})
	if err != nil {
		t.Fatalf("CheckoutDismissed: %v", err)
	}
	if s.PaymentState != PaymentCancelled {
		t.Fatalf("PaymentState = %v, want %v", s.PaymentState, PaymentCancelled)
	}
	if s.CurrentStep != StepPayment {
		t.Fatalf("cancellation moved the visitor to step %v", s.CurrentStep)
	}
	if s.Notice == nil || s.Notice.Level != NoticeInfo {
		t.Fatalf("cancellation notice = %+v, want non-error info notice", s.Notice)
	}

	// A fresh order can be started immediately.
	s, err = Apply(s, CheckoutStarted{})
	if err != nil {
		t.Fatalf("retry after cancel: %v", err)
	}
	if s.OrderID != "" || s.PaymentID != "" {
		t.Fatalf("stale order identifiers survived the retry: order=%q payment=%q", s.OrderID, s.PaymentID)
	}
}

func TestVerificationFailureEndsWithSupportNotice(t *testing.T) {
	s := sessionAtPayment(t)
	s, _ = Apply(s, CheckoutStarted{})
	s, _ = Apply(s, OrderCreated{OrderID: "order_1"})
	s, _ = Apply(s, VerificationStarted{PaymentID: "pay_1"})

	s, err := Apply(s, VerificationFailed{})
	if err != nil {
		t.Fatalf("VerificationFailed: %v", err)
	}
	if s.PaymentState != PaymentFailed {
		t.Fatalf("PaymentState = %v, want %v", s.PaymentState, PaymentFailed)
	}
	if s.RedirectURL != "" {
		t.Fatalf("RedirectURL = %q, a failed verification must never redirect", s.RedirectURL)
	}
	if s.Notice == nil || s.Notice.Level != NoticeSupport {
		t.Fatalf("notice = %+v, want a contact-support notice", s.Notice)
	}
}

func TestLateCallbacksAfterTerminalStateAreRejected(t *testing.T) {
	s := sessionAtPayment(t)
	s, _ = Apply(s, CheckoutStarted{})
	s, _ = Apply(s, OrderCreated{OrderID: "order_1"})
	s, _ = Apply(s, VerificationStarted{PaymentID: "pay_1"})
	s, _ = Apply(s, VerificationSucceeded{RedirectURL: "/done"})

	for _, ev := range []Event{CheckoutDismissed{}, CheckoutFailed{}, VerificationFailed{}, VerificationStarted{PaymentID: "pay_2"}} {
		if _, err := Apply(s, ev); !apperr.Is(err, apperr.KindConflict) {
			t.Errorf("%T after success: err = %v, want conflict", ev, err)
		}
	}
}

func TestDuplicateLeadProducesAlreadySavedNotice(t *testing.T) {
	s := newTestSession()
	s, _ = Apply(s, ContactSubmitted{Contact: ContactInfo{FullName: "Asha Verma", Phone: "+919876543210"}})

	leadID := uuid.New()
	s, err := Apply(s, DetailsSubmitted{
		Details:   CaseDetails{NoticeType: "money-recovery", City: "Pune"},
		LeadID:    &leadID,
		Duplicate: true,
	})
	if err != nil {
		t.Fatalf("DetailsSubmitted: %v", err)
	}
	if s.CurrentStep != StepPayment {
		t.Fatalf("duplicate must still advance, step = %v", s.CurrentStep)
	}
	if s.Notice == nil || s.Notice.Level != NoticeInfo || s.Notice.Message != msgAlreadySaved {
		t.Fatalf("notice = %+v, want %q", s.Notice, msgAlreadySaved)
	}
}

func TestLeadMissingRoutesBackToDetails(t *testing.T) {
	s := newTestSession()
	s, _ = Apply(s, ContactSubmitted{Contact: ContactInfo{FullName: "Asha Verma", Phone: "+919876543210"}})
	s, _ = Apply(s, DetailsSubmitted{Details: CaseDetails{NoticeType: "other", City: "Pune"}})

	s, err := Apply(s, LeadMissing{})
	if err != nil {
		t.Fatalf("LeadMissing: %v", err)
	}
	if s.CurrentStep != StepDetails || s.PaymentState != PaymentNotStarted {
		t.Fatalf("after LeadMissing: step=%v state=%v", s.CurrentStep, s.PaymentState)
	}
	if s.Notice == nil || s.Notice.Level != NoticeError {
		t.Fatalf("notice = %+v, want error notice", s.Notice)
	}
}

func TestCheckoutUnavailableFailsClosed(t *testing.T) {
	s := sessionAtPayment(t)

	s, err := Apply(s, CheckoutUnavailable{})
	if err != nil {
		t.Fatalf("CheckoutUnavailable: %v", err)
	}
	if s.PaymentState != PaymentCheckoutUnavailable {
		t.Fatalf("PaymentState = %v", s.PaymentState)
	}

	// The state is recoverable once the gateway comes back.
	if _, err := Apply(s, CheckoutStarted{}); err != nil {
		t.Fatalf("checkout after recovery: %v", err)
	}
}

func TestCheckoutWaitsForOfferResolution(t *testing.T) {
	s := sessionAtPayment(t)
	s, _ = Apply(s, CloseAttempted{})
	s, err := Apply(s, ReasonSelected{Reason: ReasonPriceTooHigh, Now: time.Now()})
	if err != nil {
		t.Fatalf("ReasonSelected: %v", err)
	}

	// With the retention dialog open, an order would be priced at a value
	// the session may be about to discard.
	if _, err := Apply(s, CheckoutStarted{}); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("checkout during open offer: err = %v, want conflict", err)
	}

	s, err = Apply(s, OfferAccepted{})
	if err != nil {
		t.Fatalf("OfferAccepted: %v", err)
	}
	s, err = Apply(s, CheckoutStarted{})
	if err != nil {
		t.Fatalf("checkout after offer resolved: %v", err)
	}
	if got := s.Pricing.AmountPaise(); got != 29900 {
		t.Fatalf("checkout amount = %d paise, want 29900", got)
	}
}

func TestOfferCannotChangePriceUnderOpenOrder(t *testing.T) {
	s := sessionAtPayment(t)
	s, _ = Apply(s, CheckoutStarted{})
	s, _ = Apply(s, OrderCreated{OrderID: "order_full"})

	// The dialog cannot legally open while an order is in flight; force the
	// stage to check the guard holds on its own.
	s.ExitIntent.Stage = ExitDiscountOffer
	s.ExitIntent.OfferPrice = s.Offers.DiscountPrice

	if _, err := Apply(s, OfferAccepted{}); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("offer accept with open order: err = %v, want conflict", err)
	}
	if s.Pricing.CurrentPrice != 499 {
		t.Fatalf("CurrentPrice = %d, want the 499 the order was created for", s.Pricing.CurrentPrice)
	}
}

func TestApplyReturnsInputUnchangedOnError(t *testing.T) {
	s := sessionAtPayment(t)
	before := s

	got, err := Apply(s, OfferAccepted{})
	if err == nil {
		t.Fatal("expected error for offer accept with no offer shown")
	}
	if got != before {
		t.Fatalf("session mutated on error: got %+v, want %+v", got, before)
	}
}
