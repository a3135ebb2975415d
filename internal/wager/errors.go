package wager

import (
	"errors"
	"fmt"
)

// Error is a rejected wager operation.
//
// Every Error leaves Payment, Pot, Nonce and all balances exactly as they
// were before the call. None of them are retried by the engine.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Identity is the caller, when known.
	Identity Identity

	// Details contains amounts involved in the failure.
	Details map[string]string
}

// ErrorCode categorizes wager errors.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates play was called before a stake was set.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// ErrCodeInsufficientFunds indicates the caller's balance is below the stake.
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"

	// ErrCodeArithmeticOverflow indicates a balance or the pot would exceed MaxAmount.
	ErrCodeArithmeticOverflow ErrorCode = "ARITHMETIC_OVERFLOW"

	// ErrCodeUnauthenticated indicates the call carried no identity.
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Identity != "" {
		return fmt.Sprintf("%s: %s (identity=%s)", e.Code, e.Message, e.Identity)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not a wager error.
func CodeOf(err error) ErrorCode {
	var we *Error
	if errors.As(err, &we) {
		return we.Code
	}
	return ""
}

// IsConfigurationError returns true if the stake was not set.
func IsConfigurationError(err error) bool {
	return CodeOf(err) == ErrCodeConfiguration
}

// IsInsufficientFunds returns true if the caller could not cover the stake.
func IsInsufficientFunds(err error) bool {
	return CodeOf(err) == ErrCodeInsufficientFunds
}

// IsArithmeticOverflow returns true if a checked addition overflowed.
func IsArithmeticOverflow(err error) bool {
	return CodeOf(err) == ErrCodeArithmeticOverflow
}

// IsUnauthenticated returns true if the call had no identity.
func IsUnauthenticated(err error) bool {
	return CodeOf(err) == ErrCodeUnauthenticated
}

// NewConfigurationError creates an Error for a missing stake.
func NewConfigurationError() *Error {
	return &Error{
		Code:    ErrCodeConfiguration,
		Message: "stake not set",
	}
}

// NewInsufficientFundsError creates an Error for a balance below the stake.
func NewInsufficientFundsError(id Identity, balance, payment Amount) *Error {
	return &Error{
		Code:     ErrCodeInsufficientFunds,
		Message:  fmt.Sprintf("balance %s is below stake %s", balance, payment),
		Identity: id,
		Details: map[string]string{
			"balance": balance.String(),
			"payment": payment.String(),
		},
	}
}

// NewOverflowError creates an Error for a checked addition that overflowed.
// what names the quantity being increased ("balance" or "pot").
func NewOverflowError(id Identity, what string, current, delta Amount) *Error {
	return &Error{
		Code:     ErrCodeArithmeticOverflow,
		Message:  fmt.Sprintf("%s overflow adding %s to %s", what, delta, current),
		Identity: id,
		Details: map[string]string{
			"target":  what,
			"current": current.String(),
			"delta":   delta.String(),
		},
	}
}

// NewUnauthenticatedError creates an Error for a call without identity.
func NewUnauthenticatedError() *Error {
	return &Error{
		Code:    ErrCodeUnauthenticated,
		Message: "caller identity required",
	}
}
