package models

import "errors"

// Settlement errors are pure domain errors with no infrastructure
// dependency. Handlers map them to HTTP statuses at the boundary.
var (
	ErrNotFound = errors.New("record not found")

	// Creation guards
	ErrSelfTrade         = errors.New("buyer and seller must be different accounts")
	ErrDuplicatePurchase = errors.New("buyer already has a verified transaction for this listing")
	ErrUnsupportedMethod = errors.New("listing does not support this payment method")

	// Settlement guards
	ErrNotAuthorized   = errors.New("actor is not allowed to perform this operation")
	ErrAlreadyVerified = errors.New("transaction is already verified")
	ErrAlreadyRejected = errors.New("transaction is already rejected")

	// UPI evidence
	ErrMissingReference    = errors.New("payment reference has not been submitted")
	ErrReferenceAlreadySet = errors.New("payment reference is already submitted")
	ErrInapplicableMethod  = errors.New("operation does not apply to this payment method")

	// Ledger
	ErrInsufficientBalance = errors.New("insufficient time credit balance")
	ErrInvalidAmount       = errors.New("transfer amount must be positive")
)
