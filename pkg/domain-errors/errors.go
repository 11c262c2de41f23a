// Package dErrors provides coded domain errors. Services return these so
// transport layers can map failures to wire statuses without string matching,
// and so tests can assert on the code rather than the message.
package dErrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain failure.
type Code string

const (
	// Asset ledger failures.
	CodeDuplicateFingerprint Code = "duplicate_fingerprint"
	CodeInvalidAmount        Code = "invalid_amount"
	CodeInvalidMaturity      Code = "invalid_maturity"
	CodeNotFound             Code = "not_found"

	// Marketplace failures.
	CodeNotOwner            Code = "not_owner"
	CodeAlreadyRedeemed     Code = "already_redeemed"
	CodeInvalidPrice        Code = "invalid_price"
	CodeNotListed           Code = "not_listed"
	CodeInsufficientPayment Code = "insufficient_payment"
	CodeSelfPurchase        Code = "self_purchase"

	// Pricing failures.
	CodeMaturityInPast Code = "maturity_in_past"

	// Funds ledger failures.
	CodeInsufficientFunds Code = "insufficient_funds"

	// Ambient failures shared across the service.
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"
)

// Error carries a code plus a human-readable message. It supports wrapping so
// infrastructure causes stay inspectable with errors.Is/As.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with a static message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in domain logic.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
