package domain

import "time"

// ExitStage is the interceptor's own nested state machine.
type ExitStage string

const (
	ExitHidden            ExitStage = "hidden"
	ExitReasonCapture     ExitStage = "reason_capture"
	ExitDiscountOffer     ExitStage = "discount_offer"
	ExitConsultationOffer ExitStage = "consultation_offer"
)

// CloseReason is the categorical reason a visitor gives for leaving.
type CloseReason string

const (
	ReasonPriceTooHigh     CloseReason = "price_too_high"
	ReasonNeedsDiscussion  CloseReason = "needs_discussion"
	ReasonNotSure          CloseReason = "not_sure"
	ReasonNeedsTime        CloseReason = "needs_time"
	ReasonDistrust         CloseReason = "distrust"
	ReasonComparingOptions CloseReason = "comparing_options"
)

// OfferCountdown is the cosmetic urgency window shown with an offer.
// Expiry never blocks acceptance.
const OfferCountdown = 360 * time.Second

// ExitIntent tracks the single-shot retention dialog. HasBeenShown is a
// hard cap: once true the interceptor never triggers again, no matter
// how many close attempts follow.
type ExitIntent struct {
	Stage          ExitStage   `json:"stage"`
	HasBeenShown   bool        `json:"hasBeenShown"`
	Reason         CloseReason `json:"reason,omitempty"`
	OfferPrice     int64       `json:"offerPrice,omitempty"`
	OfferExpiresAt *time.Time  `json:"offerExpiresAt,omitempty"`
	OfferApplied   bool        `json:"offerApplied"`
}

// stageForReason maps a close reason to the offer branch it opens.
// Price objections and comparison shoppers get the discount; hesitation
// reasons get the lower-commitment consultation. Unknown reasons fall
// through to ExitHidden, which the reducer treats as immediate dismissal.
func stageForReason(reason CloseReason) ExitStage {
	switch reason {
	case ReasonPriceTooHigh, ReasonComparingOptions:
		return ExitDiscountOffer
	case ReasonNeedsDiscussion, ReasonNotSure, ReasonNeedsTime, ReasonDistrust:
		return ExitConsultationOffer
	default:
		return ExitHidden
	}
}
