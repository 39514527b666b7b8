package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrConstraint        = errors.New("constraint violation")
	ErrUnknown           = errors.New("unknown error")

	ErrNotEnoughBalance        = errors.New("not enough balance")
	ErrNotEnoughPoints         = errors.New("not enough points")
	ErrOutOfStock              = errors.New("out of stock")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrProductUnavailable      = errors.New("product unavailable")
	ErrUnknownReferralCode     = errors.New("unknown referral code")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrForbidden               = errors.New("forbidden")
	ErrRedeemBelowMinimum      = errors.New("points amount is below redeem minimum")
	ErrCampaignAlreadySent     = errors.New("campaign already sent")
	ErrSubscriptionGone        = errors.New("push subscription expired")
)

// PromoError ошибка применения промокода. Reason содержит причину, пригодную для показа пользователю.
type PromoError struct {
	Code   string
	Reason string
}

func NewPromoError(code, reason string) error {
	return &PromoError{Code: code, Reason: reason}
}

func (e *PromoError) Error() string {
	return fmt.Sprintf("promo code `%s`: %s", e.Code, e.Reason)
}
