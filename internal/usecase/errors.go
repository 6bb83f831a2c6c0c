package usecase

import "errors"

// Sentinel errors the adaptor maps to HTTP status codes. Service
// methods wrap these with fmt.Errorf("...: %w", ...) so callers match
// with errors.Is while logs keep the detail.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyPaid      = errors.New("booking already paid")
	ErrProviderRejected = errors.New("payment provider rejected the request")
	ErrPaymentFailed    = errors.New("payment failed")
	ErrIndeterminate    = errors.New("payment outcome indeterminate, retry later")
)
