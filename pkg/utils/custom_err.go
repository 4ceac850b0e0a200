package utils

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrValidation            = errors.New("validation failed")
	ErrExternalService       = errors.New("external service failure")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrUpgradeRequired       = errors.New("feature not available on current plan")
	ErrQuotaExceeded         = errors.New("usage quota exceeded")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrStripeCustomerMissing = errors.New("stripe customer missing for user")
	ErrDatabaseError         = errors.New("database error")
)

// UsageLimitError is returned when a metered feature has no quota left this month.
type UsageLimitError struct {
	FeatureID string
	Current   int64
	Limit     int
}

func (e *UsageLimitError) Error() string {
	return fmt.Sprintf("%s: limit %d per month reached (current %d)", e.FeatureID, e.Limit, e.Current)
}

func (e *UsageLimitError) Unwrap() error { return ErrQuotaExceeded }
