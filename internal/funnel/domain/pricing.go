package domain

import "noticedesk_backend/platform/apperr"

// Pricing tracks the chargeable price in whole rupees. CurrentPrice is
// the only value the order-creation path ever charges, and the single
// permitted mutation is a downward move via WithOffer.
type Pricing struct {
	BasePrice    int64 `json:"basePrice"`
	CurrentPrice int64 `json:"currentPrice"`
	IsDiscounted bool  `json:"isDiscounted"`
}

// Offers holds the exit-intent price points resolved from the catalog
// at session start.
type Offers struct {
	DiscountPrice     int64 `json:"discountPrice"`
	ConsultationPrice int64 `json:"consultationPrice"`
}

// NewPricing creates pricing with the current price at the base.
func NewPricing(basePrice int64) Pricing {
	return Pricing{BasePrice: basePrice, CurrentPrice: basePrice}
}

// WithOffer returns pricing with the offer applied. Offers can only move
// the price down; anything at or above the current price is refused.
func (p Pricing) WithOffer(offerPrice int64) (Pricing, error) {
	if offerPrice <= 0 {
		return p, apperr.Validation("offer price must be positive")
	}
	if offerPrice > p.BasePrice {
		return p, apperr.Validation("offer price cannot exceed the base price")
	}
	return Pricing{
		BasePrice:    p.BasePrice,
		CurrentPrice: offerPrice,
		IsDiscounted: offerPrice < p.BasePrice,
	}, nil
}

// Savings is the displayed difference between base and current price.
func (p Pricing) Savings() int64 {
	return p.BasePrice - p.CurrentPrice
}

// AmountPaise converts the current price to the gateway's minor units.
func (p Pricing) AmountPaise() int64 {
	return p.CurrentPrice * 100
}
