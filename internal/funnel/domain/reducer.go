package domain

import (
	"time"

	"github.com/google/uuid"

	"noticedesk_backend/platform/apperr"
)

// Event is a funnel transition input. Events carry data only; all
// validation and I/O happens before an event is applied.
type Event interface {
	isEvent()
}

// ContactSubmitted completes the contact step with validated data.
type ContactSubmitted struct {
	Contact ContactInfo
}

// DetailsSubmitted completes the details step. LeadID is the lead the
// submission resolved to; Duplicate marks an absorbed resubmission.
type DetailsSubmitted struct {
	Details   CaseDetails
	LeadID    *uuid.UUID
	Duplicate bool
}

// ContactEditRequested returns the visitor to the contact step.
type ContactEditRequested struct{}

// BackRequested returns the visitor from payment to the details step.
type BackRequested struct{}

// CloseAttempted is the visitor trying to dismiss the funnel.
type CloseAttempted struct{}

// ReasonSelected picks a close reason inside the exit-intent dialog.
type ReasonSelected struct {
	Reason CloseReason
	Now    time.Time
}

// OfferAccepted accepts the currently shown exit-intent offer.
type OfferAccepted struct{}

// OfferDeclined declines the offer and lets the dismissal proceed.
type OfferDeclined struct{}

// OfferSkipped skips the consultation offer back to full-price payment.
type OfferSkipped struct{}

// CheckoutUnavailable records a failed gateway readiness check.
type CheckoutUnavailable struct{}

// CheckoutStarted claims the in-flight order slot before the gateway
// call is made.
type CheckoutStarted struct{}

// LeadMissing routes the visitor back to details when checkout was
// attempted without a lead.
type LeadMissing struct{}

// OrderCreated records the gateway order and hands control to the
// external checkout UI.
type OrderCreated struct {
	OrderID string
}

// OrderCreationFailed records a gateway order failure.
type OrderCreationFailed struct {
	Message string
}

// CheckoutDismissed is the visitor closing the external checkout UI.
type CheckoutDismissed struct{}

// CheckoutFailed is the gateway reporting a failed payment attempt.
type CheckoutFailed struct {
	Message string
}

// VerificationStarted records the checkout success callback.
type VerificationStarted struct {
	PaymentID string
}

// VerificationSucceeded finishes a verified payment.
type VerificationSucceeded struct {
	RedirectURL string
}

// VerificationFailed records a signature or verification mismatch.
type VerificationFailed struct{}

func (ContactSubmitted) isEvent()      {}
func (DetailsSubmitted) isEvent()      {}
func (ContactEditRequested) isEvent()  {}
func (BackRequested) isEvent()         {}
func (CloseAttempted) isEvent()        {}
func (ReasonSelected) isEvent()        {}
func (OfferAccepted) isEvent()         {}
func (OfferDeclined) isEvent()         {}
func (OfferSkipped) isEvent()          {}
func (CheckoutUnavailable) isEvent()   {}
func (CheckoutStarted) isEvent()       {}
func (LeadMissing) isEvent()           {}
func (OrderCreated) isEvent()          {}
func (OrderCreationFailed) isEvent()   {}
func (CheckoutDismissed) isEvent()     {}
func (CheckoutFailed) isEvent()        {}
func (VerificationStarted) isEvent()   {}
func (VerificationSucceeded) isEvent() {}
func (VerificationFailed) isEvent()    {}

// User-facing notice texts.
const (
	msgDetailsSaved        = "details saved"
	msgAlreadySaved        = "your details are already saved, continue to payment"
	msgPaymentInProgress   = "a payment is already in progress"
	msgCheckoutUnavailable = "payment is temporarily unavailable, please refresh the page and try again"
	msgLeadMissing         = "we need your case details before payment"
	msgPaymentCancelled    = "payment cancelled, you can retry whenever you are ready"
	msgPaymentSucceeded    = "payment successful"
	msgVerificationFailed  = "payment verification failed, please contact support"
	msgOfferApplied        = "offer applied, the new price is active"
)

// Apply is the pure reducer. It returns the next session value, or an
// error when the event is not valid in the current state; on error the
// input session is returned unchanged.
func Apply(s FormSession, e Event) (FormSession, error) {
	switch ev := e.(type) {
	case ContactSubmitted:
		return applyContactSubmitted(s, ev)
	case DetailsSubmitted:
		return applyDetailsSubmitted(s, ev)
	case ContactEditRequested:
		return applyStepBack(s, StepContact)
	case BackRequested:
		return applyStepBack(s, StepDetails)
	case CloseAttempted:
		return applyCloseAttempted(s)
	case ReasonSelected:
		return applyReasonSelected(s, ev)
	case OfferAccepted:
		return applyOfferAccepted(s)
	case OfferDeclined:
		return applyOfferDeclined(s)
	case OfferSkipped:
		return applyOfferSkipped(s)
	case CheckoutUnavailable:
		return applyCheckoutUnavailable(s)
	case CheckoutStarted:
		return applyCheckoutStarted(s)
	case LeadMissing:
		return applyLeadMissing(s)
	case OrderCreated:
		return applyOrderCreated(s, ev)
	case OrderCreationFailed:
		return applyOrderCreationFailed(s, ev)
	case CheckoutDismissed:
		return applyCheckoutDismissed(s)
	case CheckoutFailed:
		return applyCheckoutFailed(s, ev)
	case VerificationStarted:
		return applyVerificationStarted(s, ev)
	case VerificationSucceeded:
		return applyVerificationSucceeded(s, ev)
	case VerificationFailed:
		return applyVerificationFailed(s)
	default:
		return s, apperr.Internal("unknown funnel event")
	}
}

func applyContactSubmitted(s FormSession, ev ContactSubmitted) (FormSession, error) {
	if s.CurrentStep != StepContact {
		return s, apperr.Conflict("contact step is already complete")
	}
	s.Contact = ev.Contact
	s.CurrentStep = StepDetails
	s.Notice = nil
	return s, nil
}

func applyDetailsSubmitted(s FormSession, ev DetailsSubmitted) (FormSession, error) {
	if s.CurrentStep != StepDetails {
		return s, apperr.Conflict("details can only be submitted from the details step")
	}
	s.Details = ev.Details
	if ev.LeadID != nil {
		s.LeadID = ev.LeadID
	}
	s.DuplicateLead = ev.Duplicate
	s.CurrentStep = StepPayment
	if ev.Duplicate {
		s.Notice = &Notice{Level: NoticeInfo, Message: msgAlreadySaved}
	} else {
		s.Notice = &Notice{Level: NoticeInfo, Message: msgDetailsSaved}
	}
	return s, nil
}

// applyStepBack handles both the explicit edit action (to contact) and
// back navigation (to details). Either is refused while a payment is in
// flight.
func applyStepBack(s FormSession, target Step) (FormSession, error) {
	if s.PaymentState.InFlight() {
		return s, apperr.Conflict(msgPaymentInProgress)
	}
	if target >= s.CurrentStep {
		return s, apperr.Conflict("cannot move forward with a back action")
	}
	s.CurrentStep = target
	s.Notice = nil
	return s, nil
}

func applyCloseAttempted(s FormSession) (FormSession, error) {
	if s.PaymentState.InFlight() {
		return s, apperr.Conflict(msgPaymentInProgress)
	}

	// The retention dialog intercepts exactly one close attempt, and only
	// on the payment step. Every later attempt falls straight through to
	// the contact step.
	if s.CurrentStep == StepPayment && !s.ExitIntent.HasBeenShown {
		s.ExitIntent.Stage = ExitReasonCapture
		s.ExitIntent.HasBeenShown = true
		return s, nil
	}

	s.ExitIntent.Stage = ExitHidden
	s.CurrentStep = StepContact
	s.Notice = nil
	return s, nil
}

func applyReasonSelected(s FormSession, ev ReasonSelected) (FormSession, error) {
	if s.ExitIntent.Stage != ExitReasonCapture {
		return s, apperr.Conflict("no close reason is being captured")
	}

	s.ExitIntent.Reason = ev.Reason
	stage := stageForReason(ev.Reason)
	s.ExitIntent.Stage = stage

	switch stage {
	case ExitDiscountOffer:
		s.ExitIntent.OfferPrice = s.Offers.DiscountPrice
	case ExitConsultationOffer:
		s.ExitIntent.OfferPrice = s.Offers.ConsultationPrice
	default:
		// No mapping: honor the dismissal immediately.
		s.CurrentStep = StepContact
		return s, nil
	}

	expires := ev.Now.Add(OfferCountdown)
	s.ExitIntent.OfferExpiresAt = &expires
	return s, nil
}

func applyOfferAccepted(s FormSession) (FormSession, error) {
	if s.ExitIntent.Stage != ExitDiscountOffer && s.ExitIntent.Stage != ExitConsultationOffer {
		return s, apperr.Conflict("no offer is currently shown")
	}
	// The price must never change under an open order: whatever the order
	// was created for is what the visitor is charged.
	if s.PaymentState.InFlight() {
		return s, apperr.Conflict(msgPaymentInProgress)
	}

	// Acceptance is deliberately not gated on the countdown: the deadline
	// is a display device only.
	pricing, err := s.Pricing.WithOffer(s.ExitIntent.OfferPrice)
	if err != nil {
		return s, err
	}
	s.Pricing = pricing
	s.ExitIntent.Stage = ExitHidden
	s.ExitIntent.OfferApplied = true
	s.CurrentStep = StepPayment
	s.Notice = &Notice{Level: NoticeInfo, Message: msgOfferApplied}
	return s, nil
}

func applyOfferDeclined(s FormSession) (FormSession, error) {
	if s.ExitIntent.Stage != ExitDiscountOffer && s.ExitIntent.Stage != ExitConsultationOffer {
		return s, apperr.Conflict("no offer is currently shown")
	}
	s.ExitIntent.Stage = ExitHidden
	s.CurrentStep = StepContact
	s.Notice = nil
	return s, nil
}

func applyOfferSkipped(s FormSession) (FormSession, error) {
	if s.ExitIntent.Stage != ExitConsultationOffer {
		return s, apperr.Conflict("skip is only available on the consultation offer")
	}
	s.ExitIntent.Stage = ExitHidden
	s.CurrentStep = StepPayment
	s.Notice = nil
	return s, nil
}

func applyCheckoutUnavailable(s FormSession) (FormSession, error) {
	if s.CurrentStep != StepPayment {
		return s, apperr.Conflict("checkout is only reachable from the payment step")
	}
	s.PaymentState = PaymentCheckoutUnavailable
	s.Notice = &Notice{Level: NoticeError, Message: msgCheckoutUnavailable}
	return s, nil
}

func applyCheckoutStarted(s FormSession) (FormSession, error) {
	if s.CurrentStep != StepPayment {
		return s, apperr.Conflict("checkout is only reachable from the payment step")
	}
	// An order priced before the retention dialog resolves could charge a
	// price the session no longer shows, so checkout waits it out.
	if s.ExitIntent.Stage != ExitHidden {
		return s, apperr.Conflict("resolve the current offer before paying")
	}
	if !s.PaymentState.CanStartCheckout() {
		return s, apperr.Conflict(msgPaymentInProgress)
	}
	s.PaymentState = PaymentOrderCreating
	s.OrderID = ""
	s.PaymentID = ""
	s.RedirectURL = ""
	s.Notice = nil
	return s, nil
}

func applyLeadMissing(s FormSession) (FormSession, error) {
	if s.CurrentStep != StepPayment {
		return s, apperr.Conflict("checkout is only reachable from the payment step")
	}
	s.PaymentState = PaymentNotStarted
	s.CurrentStep = StepDetails
	s.Notice = &Notice{Level: NoticeError, Message: msgLeadMissing}
	return s, nil
}

func applyOrderCreated(s FormSession, ev OrderCreated) (FormSession, error) {
	if s.PaymentState != PaymentOrderCreating {
		return s, apperr.Conflict("no order is being created")
	}
	s.PaymentState = PaymentAwaitingUserAction
	s.OrderID = ev.OrderID
	return s, nil
}

func applyOrderCreationFailed(s FormSession, ev OrderCreationFailed) (FormSession, error) {
	if s.PaymentState != PaymentOrderCreating {
		return s, apperr.Conflict("no order is being created")
	}
	s.PaymentState = PaymentFailed
	s.Notice = &Notice{Level: NoticeError, Message: ev.Message}
	return s, nil
}

func applyCheckoutDismissed(s FormSession) (FormSession, error) {
	if s.PaymentState != PaymentAwaitingUserAction {
		return s, apperr.Conflict("checkout is not open")
	}
	// Cancellation is a first-class state, not an error. The visitor
	// stays on the payment step and can retry.
	s.PaymentState = PaymentCancelled
	s.Notice = &Notice{Level: NoticeInfo, Message: msgPaymentCancelled}
	return s, nil
}

func applyCheckoutFailed(s FormSession, ev CheckoutFailed) (FormSession, error) {
	if s.PaymentState != PaymentAwaitingUserAction && s.PaymentState != PaymentOrderCreating {
		return s, apperr.Conflict("checkout is not open")
	}
	s.PaymentState = PaymentFailed
	message := ev.Message
	if message == "" {
		message = "payment failed, please try again"
	}
	s.Notice = &Notice{Level: NoticeError, Message: message}
	return s, nil
}

func applyVerificationStarted(s FormSession, ev VerificationStarted) (FormSession, error) {
	if s.PaymentState != PaymentAwaitingUserAction {
		return s, apperr.Conflict("checkout is not open")
	}
	s.PaymentState = PaymentVerifying
	s.PaymentID = ev.PaymentID
	return s, nil
}

func applyVerificationSucceeded(s FormSession, ev VerificationSucceeded) (FormSession, error) {
	if s.PaymentState != PaymentVerifying {
		return s, apperr.Conflict("no verification is in progress")
	}
	s.PaymentState = PaymentSucceeded
	s.RedirectURL = ev.RedirectURL
	s.Notice = &Notice{Level: NoticeInfo, Message: msgPaymentSucceeded}
	return s, nil
}

func applyVerificationFailed(s FormSession) (FormSession, error) {
	if s.PaymentState != PaymentVerifying {
		return s, apperr.Conflict("no verification is in progress")
	}
	s.PaymentState = PaymentFailed
	s.RedirectURL = ""
	s.Notice = &Notice{Level: NoticeSupport, Message: msgVerificationFailed}
	return s, nil
}
