// Package service orchestrates the funnel: it validates input, resolves
// pricing, talks to the lead and payment ports, and drives every session
// transition through the pure reducer under the store's per-session lock.
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"noticedesk_backend/internal/events"
	"noticedesk_backend/internal/funnel/domain"
	"noticedesk_backend/internal/funnel/ports"
	"noticedesk_backend/internal/funnel/session"
	"noticedesk_backend/platform/apperr"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/logger"
	"noticedesk_backend/platform/phone"
)

// Service is the funnel controller.
type Service struct {
	store    *session.Store
	leads    ports.LeadWriter
	payments ports.PaymentPort
	catalog  ports.CatalogReader
	followup ports.FollowUpScheduler
	bus      events.Bus
	cfg      config.FunnelConfig
	log      *logger.Logger
	now      func() time.Time
}

// New creates the funnel service. followup may be nil when no scheduler
// is configured.
func New(
	store *session.Store,
	leads ports.LeadWriter,
	payments ports.PaymentPort,
	catalog ports.CatalogReader,
	followup ports.FollowUpScheduler,
	bus events.Bus,
	cfg config.FunnelConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		store:    store,
		leads:    leads,
		payments: payments,
		catalog:  catalog,
		followup: followup,
		bus:      bus,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// StartParams opens a new funnel session.
type StartParams struct {
	PlanCode string
	Source   string
}

// Start creates a session priced from the catalog.
func (s *Service) Start(ctx context.Context, params StartParams) (domain.FormSession, error) {
	planCode := params.PlanCode
	if planCode == "" {
		planCode = defaultPlanCode
	}

	pricing, err := s.catalog.PlanPricing(ctx, planCode)
	if err != nil {
		return domain.FormSession{}, err
	}

	sess := domain.NewSession(
		uuid.New(),
		pricing.Code,
		pricing.Name,
		params.Source,
		domain.NewPricing(pricing.BasePrice),
		domain.Offers{
			DiscountPrice:     pricing.DiscountPrice,
			ConsultationPrice: pricing.ConsultationPrice,
		},
		s.now(),
	)
	s.store.Put(sess)

	s.bus.Publish(ctx, events.FunnelStarted{
		BaseEvent:  events.NewBaseEvent(),
		SessionID:  sess.ID,
		NoticeType: "",
		Source:     params.Source,
	})
	s.log.Info("funnel session started", "sessionId", sess.ID, "plan", pricing.Code)
	return sess, nil
}

// Get returns the current session state.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.FormSession, error) {
	return s.store.Get(id)
}

// ContactParams is the raw step-1 input.
type ContactParams struct {
	FullName    string
	Phone       string
	CountryCode string
}

// SubmitContact validates and applies the contact step.
func (s *Service) SubmitContact(ctx context.Context, id uuid.UUID, params ContactParams) (domain.FormSession, error) {
	name := strings.TrimSpace(params.FullName)
	if utf8.RuneCountInString(name) < 2 {
		return domain.FormSession{}, apperr.Validation("please enter your full name").
			WithDetails(map[string]string{"field": "fullName"})
	}

	region := params.CountryCode
	if region == "" {
		region = s.cfg.GetPhoneRegion()
	}
	normalized := phone.NormalizeE164(params.Phone, region)
	if normalized == "" {
		return domain.FormSession{}, apperr.Validation("please enter a valid WhatsApp number").
			WithDetails(map[string]string{"field": "whatsappNumber"})
	}

	sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.ContactSubmitted{Contact: domain.ContactInfo{
			FullName:    name,
			Phone:       normalized,
			CountryCode: region,
		}})
	})
	if err != nil {
		return domain.FormSession{}, err
	}

	s.bus.Publish(ctx, events.StepCompleted{
		BaseEvent: events.NewBaseEvent(),
		SessionID: sess.ID,
		Step:      domain.StepContact.String(),
	})
	return sess, nil
}

// DetailsParams is the raw step-2 input.
type DetailsParams struct {
	NoticeType  string
	Description string
	City        string
}

// SubmitDetails validates the case details, submits the lead, and moves
// the session to the payment step. When the session already holds a lead
// id the lead call is skipped entirely: resubmission after back
// navigation makes no second network call.
func (s *Service) SubmitDetails(ctx context.Context, id uuid.UUID, params DetailsParams) (domain.FormSession, error) {
	city := strings.TrimSpace(params.City)
	if city == "" {
		return domain.FormSession{}, apperr.Validation("please enter your city").
			WithDetails(map[string]string{"field": "city"})
	}
	if len(params.Description) > 1000 {
		return domain.FormSession{}, apperr.Validation("description must be 1000 characters or fewer").
			WithDetails(map[string]string{"field": "description"})
	}
	exists, err := s.catalog.NoticeTypeExists(ctx, params.NoticeType)
	if err != nil {
		return domain.FormSession{}, err
	}
	if !exists {
		return domain.FormSession{}, apperr.Validation("please choose a notice type from the list").
			WithDetails(map[string]string{"field": "noticeType"})
	}

	details := domain.CaseDetails{
		NoticeType:  params.NoticeType,
		Description: strings.TrimSpace(params.Description),
		City:        city,
	}

	cur, err := s.store.Get(id)
	if err != nil {
		return domain.FormSession{}, err
	}

	// Re-entrant short circuit: an existing lead id means the earlier
	// submission already succeeded.
	if cur.LeadID != nil {
		return s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
			return domain.Apply(cur, domain.DetailsSubmitted{
				Details:   details,
				LeadID:    cur.LeadID,
				Duplicate: cur.DuplicateLead,
			})
		})
	}

	result, err := s.leads.Submit(ctx, ports.SubmitLeadParams{
		SessionID:   cur.ID,
		Name:        cur.Contact.FullName,
		Phone:       cur.Contact.Phone,
		NoticeType:  details.NoticeType,
		City:        details.City,
		Description: details.Description,
		Source:      cur.Source,
	})
	if err != nil {
		// Recoverable: the session stays on the details step and the
		// visitor simply retries.
		return domain.FormSession{}, err
	}

	sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		leadID := result.LeadID
		return domain.Apply(cur, domain.DetailsSubmitted{
			Details:   details,
			LeadID:    &leadID,
			Duplicate: result.Duplicate,
		})
	})
	if err != nil {
		return domain.FormSession{}, err
	}

	s.bus.Publish(ctx, events.StepCompleted{
		BaseEvent: events.NewBaseEvent(),
		SessionID: sess.ID,
		Step:      domain.StepDetails.String(),
	})
	s.bus.Publish(ctx, events.LeadCaptured{
		BaseEvent:  events.NewBaseEvent(),
		SessionID:  sess.ID,
		LeadID:     result.LeadID,
		NoticeType: details.NoticeType,
		Phone:      cur.Contact.Phone,
		Duplicate:  result.Duplicate,
	})
	return sess, nil
}

// EditContact returns the visitor to the contact step.
func (s *Service) EditContact(ctx context.Context, id uuid.UUID) (domain.FormSession, error) {
	return s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.ContactEditRequested{})
	})
}

// Back returns the visitor from payment to the details step.
func (s *Service) Back(ctx context.Context, id uuid.UUID) (domain.FormSession, error) {
	return s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.BackRequested{})
	})
}

// Close handles a dismissal attempt. On the payment step the first
// attempt opens the exit-intent dialog; later attempts fall through.
func (s *Service) Close(ctx context.Context, id uuid.UUID) (domain.FormSession, error) {
	sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.CloseAttempted{})
	})
	if err != nil {
		return domain.FormSession{}, err
	}

	if sess.ExitIntent.Stage == domain.ExitReasonCapture {
		s.bus.Publish(ctx, events.ExitIntentShown{
			BaseEvent: events.NewBaseEvent(),
			SessionID: sess.ID,
			Step:      domain.StepPayment.String(),
		})
	}
	return sess, nil
}

// SelectCloseReason records the visitor's reason and branches into the
// matching offer, or honors the dismissal when no branch exists.
func (s *Service) SelectCloseReason(ctx context.Context, id uuid.UUID, reason string) (domain.FormSession, error) {
	return s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.ReasonSelected{
			Reason: domain.CloseReason(reason),
			Now:    s.now(),
		})
	})
}

// AcceptOffer applies the shown offer price and resumes payment.
func (s *Service) AcceptOffer(ctx context.Context, id uuid.UUID) (domain.FormSession, error) {
	sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.OfferAccepted{})
	})
	if err != nil {
		return domain.FormSession{}, err
	}
	s.publishOfferResolved(ctx, sess, "accepted")
	return sess, nil
}

// DeclineOffer declines the offer and honors the dismissal.
func (s *Service) DeclineOffer(ctx context.Context, id uuid.UUID) (domain.FormSession, error) {
	sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.OfferDeclined{})
	})
	if err != nil {
		return domain.FormSession{}, err
	}
	s.publishOfferResolved(ctx, sess, "declined")
	return sess, nil
}

// SkipOffer returns from the consultation offer to full-price payment.
func (s *Service) SkipOffer(ctx context.Context, id uuid.UUID) (domain.FormSession, error) {
	sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.OfferSkipped{})
	})
	if err != nil {
		return domain.FormSession{}, err
	}
	s.publishOfferResolved(ctx, sess, "skipped")
	return sess, nil
}

// CheckoutResult is a created order plus the session after the
// transition.
type CheckoutResult struct {
	Session  domain.FormSession
	Checkout ports.CheckoutConfig
}

// BeginCheckout creates a gateway order for the current price. The
// in-flight slot is claimed atomically before the gateway call, so a
// second invocation while one is pending is rejected without any
// network activity.
func (s *Service) BeginCheckout(ctx context.Context, id uuid.UUID) (CheckoutResult, error) {
	cur, err := s.store.Get(id)
	if err != nil {
		return CheckoutResult{}, err
	}

	// Missing lead routes back to the details step instead of erroring in
	// place.
	if cur.LeadID == nil && cur.CurrentStep == domain.StepPayment {
		sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
			return domain.Apply(cur, domain.LeadMissing{})
		})
		if err != nil {
			return CheckoutResult{}, err
		}
		return CheckoutResult{Session: sess}, nil
	}

	// Fail closed when the gateway is not ready; no order is attempted.
	if !s.payments.Ready() {
		sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
			return domain.Apply(cur, domain.CheckoutUnavailable{})
		})
		if err != nil {
			return CheckoutResult{}, err
		}
		return CheckoutResult{Session: sess}, nil
	}

	// Claim the single in-flight order slot.
	claimed, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.CheckoutStarted{})
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	checkout, orderErr := s.payments.CreateOrder(ctx, ports.CreateOrderParams{
		SessionID:   claimed.ID,
		LeadID:      *claimed.LeadID,
		AmountPaise: claimed.Pricing.AmountPaise(),
		Prefill: map[string]string{
			"name":    claimed.Contact.FullName,
			"contact": claimed.Contact.Phone,
		},
		Notes: map[string]string{
			"leadId":     claimed.LeadID.String(),
			"service":    claimed.Details.NoticeType,
			"discounted": boolString(claimed.Pricing.IsDiscounted),
			"planId":     claimed.PlanCode,
			"planName":   claimed.PlanName,
		},
	})
	if orderErr != nil {
		sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
			return domain.Apply(cur, domain.OrderCreationFailed{Message: userMessage(orderErr)})
		})
		if err != nil {
			return CheckoutResult{}, err
		}
		s.publishPaymentFailed(ctx, sess, "", "order_creation_failed", userMessage(orderErr))
		return CheckoutResult{Session: sess}, nil
	}

	sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.OrderCreated{OrderID: checkout.OrderID})
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	s.bus.Publish(ctx, events.PaymentInitiated{
		BaseEvent:   events.NewBaseEvent(),
		SessionID:   sess.ID,
		OrderID:     checkout.OrderID,
		AmountPaise: checkout.AmountPaise,
		Currency:    checkout.Currency,
	})
	return CheckoutResult{Session: sess, Checkout: checkout}, nil
}

// CancelCheckout records the visitor dismissing the checkout UI. The
// session stays on the payment step and a recovery nudge is scheduled.
func (s *Service) CancelCheckout(ctx context.Context, id uuid.UUID) (domain.FormSession, error) {
	sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.CheckoutDismissed{})
	})
	if err != nil {
		return domain.FormSession{}, err
	}

	if sess.OrderID != "" {
		if err := s.payments.RecordCancelled(ctx, sess.OrderID); err != nil {
			s.log.Warn("failed to record cancelled payment", "sessionId", sess.ID, "orderId", sess.OrderID, "error", err)
		}
	}
	s.scheduleNudge(ctx, sess)
	s.publishPaymentFailed(ctx, sess, sess.OrderID, "cancelled", "")
	return sess, nil
}

// FailCheckout records a gateway-reported payment failure.
func (s *Service) FailCheckout(ctx context.Context, id uuid.UUID, reason string) (domain.FormSession, error) {
	sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.CheckoutFailed{Message: reason})
	})
	if err != nil {
		return domain.FormSession{}, err
	}

	if sess.OrderID != "" {
		if err := s.payments.RecordFailed(ctx, sess.OrderID, reason); err != nil {
			s.log.Warn("failed to record failed payment", "sessionId", sess.ID, "orderId", sess.OrderID, "error", err)
		}
	}
	s.publishPaymentFailed(ctx, sess, sess.OrderID, "failed", reason)
	return sess, nil
}

// VerifyCheckoutParams carries the checkout success callback.
type VerifyCheckoutParams struct {
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyPayment confirms the checkout callback server-side. A verified
// payment completes the funnel; anything else lands in Failed with a
// contact-support notice and no redirect.
func (s *Service) VerifyPayment(ctx context.Context, id uuid.UUID, params VerifyCheckoutParams) (domain.FormSession, error) {
	cur, err := s.store.Get(id)
	if err != nil {
		return domain.FormSession{}, err
	}
	if cur.OrderID == "" || cur.OrderID != params.OrderID {
		return domain.FormSession{}, apperr.Validation("order does not belong to this session")
	}

	claimed, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.VerificationStarted{PaymentID: params.PaymentID})
	})
	if err != nil {
		return domain.FormSession{}, err
	}

	verified, verifyErr := s.payments.Verify(ctx, ports.VerifyParams{
		OrderID:   params.OrderID,
		PaymentID: params.PaymentID,
		Signature: params.Signature,
	})
	if verifyErr != nil || !verified {
		sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
			return domain.Apply(cur, domain.VerificationFailed{})
		})
		if err != nil {
			return domain.FormSession{}, err
		}
		s.publishPaymentFailed(ctx, sess, params.OrderID, "verification_failed", "")
		return sess, nil
	}

	redirect := s.cfg.GetSuccessRedirectURL() + "?paymentId=" + params.PaymentID
	sess, err := s.store.Update(id, func(cur domain.FormSession) (domain.FormSession, error) {
		return domain.Apply(cur, domain.VerificationSucceeded{RedirectURL: redirect})
	})
	if err != nil {
		return domain.FormSession{}, err
	}

	if claimed.LeadID != nil {
		if err := s.leads.MarkPaid(ctx, *claimed.LeadID, params.OrderID); err != nil {
			s.log.Error("failed to mark lead paid", "leadId", *claimed.LeadID, "orderId", params.OrderID, "error", err)
		}
	}

	var leadID uuid.UUID
	if claimed.LeadID != nil {
		leadID = *claimed.LeadID
	}
	s.bus.Publish(ctx, events.PaymentCompleted{
		BaseEvent:   events.NewBaseEvent(),
		SessionID:   sess.ID,
		LeadID:      leadID,
		OrderID:     params.OrderID,
		PaymentID:   params.PaymentID,
		AmountPaise: sess.Pricing.AmountPaise(),
	})
	return sess, nil
}

// HandleExpired schedules a recovery nudge for a session that expired
// holding a captured lead without a completed payment. Invoked by the
// session store's expiry hook.
func (s *Service) HandleExpired(sess domain.FormSession) {
	if sess.PaymentState == domain.PaymentSucceeded {
		return
	}
	s.scheduleNudge(context.Background(), sess)
}

const defaultPlanCode = "notice-draft"

func (s *Service) publishOfferResolved(ctx context.Context, sess domain.FormSession, outcome string) {
	s.bus.Publish(ctx, events.ExitOfferResolved{
		BaseEvent: events.NewBaseEvent(),
		SessionID: sess.ID,
		Reason:    string(sess.ExitIntent.Reason),
		Offer:     string(sess.ExitIntent.Stage),
		Outcome:   outcome,
	})
}

func (s *Service) publishPaymentFailed(ctx context.Context, sess domain.FormSession, orderID, errorType, message string) {
	s.bus.Publish(ctx, events.PaymentFailed{
		BaseEvent: events.NewBaseEvent(),
		SessionID: sess.ID,
		OrderID:   orderID,
		ErrorType: errorType,
		Message:   message,
	})
}

func (s *Service) scheduleNudge(ctx context.Context, sess domain.FormSession) {
	if s.followup == nil || sess.LeadID == nil {
		return
	}
	err := s.followup.ScheduleNudge(ctx, ports.NudgeParams{
		SessionID: sess.ID,
		LeadID:    *sess.LeadID,
		Name:      sess.Contact.FullName,
		Phone:     sess.Contact.Phone,
		OrderID:   sess.OrderID,
	})
	if err != nil {
		s.log.Warn("failed to schedule follow-up nudge", "sessionId", sess.ID, "error", err)
	}
}

func userMessage(err error) string {
	if appErr, ok := err.(*apperr.Error); ok {
		return appErr.Message
	}
	return "could not start the payment, please try again"
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
