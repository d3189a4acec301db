package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrInvalidKind               = errors.New("invalid notification type")
	ErrInvalidOrderStatus        = errors.New("invalid order status")
	ErrInvalidSubscriptionStatus = errors.New("invalid subscription status")
	ErrInvalidPaymentStatus      = errors.New("invalid payment status")
	ErrInvalidDetails            = errors.New("invalid notification details")
	ErrKindMismatch              = errors.New("details do not match notification type")
	ErrNotConfigured             = errors.New("whatsapp is not configured: phone number id and access token are required")
	ErrMissingOTPCode            = errors.New("otp code is required")
	ErrBatchEmpty                = errors.New("batch must contain at least one recipient")
	ErrBatchTooLarge             = errors.New("batch exceeds maximum of 1000 recipients")
)
