// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Settlement core errors. These are the only failure kinds the engine
// reports; validation happens before any mutation, so a returned error
// always means no state changed.
var (
	ErrBankNotFound             = errors.New("bank not found")
	ErrInvalidBranch            = errors.New("invalid branch code")
	ErrUnknownMerchantToken     = errors.New("unknown merchant token")
	ErrTransactionFailed        = errors.New("transaction failed")
	ErrLedgerIntegrityViolation = errors.New("ledger integrity violation")

	// Registration errors
	ErrInvalidMerchantID = errors.New("invalid merchant id")
	ErrMerchantNotFound  = errors.New("merchant not found")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
