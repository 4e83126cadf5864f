package domain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrorCode is the machine-parseable error code shared by every protocol
// module. Codes are grouped by taxonomy: validation (1xx), authorization
// (2xx), registration state (3xx), campaign state (4xx), relay lookups
// (5xx), external boundary failures (6xx), and arithmetic (9xx).
type ErrorCode uint16

const (
	// Validation errors - always checked first, always before any mutation
	ErrCodeInvalidAddress            ErrorCode = 100
	ErrCodeZeroAmount                ErrorCode = 101
	ErrCodeInvalidAmount             ErrorCode = 102
	ErrCodeInvalidGoal               ErrorCode = 103
	ErrCodeInvalidDuration           ErrorCode = 104
	ErrCodeInvalidGracePeriod        ErrorCode = 105
	ErrCodeNotTargetToken            ErrorCode = 106
	ErrCodeNativeCurrencyNotAccepted ErrorCode = 107
	ErrCodeInvalidShare              ErrorCode = 108
	ErrCodeExceedsMaximum            ErrorCode = 109

	// Authorization errors - checked immediately after validation
	ErrCodeNotAuthorizedAdmin    ErrorCode = 200
	ErrCodeNotCampaignOwner      ErrorCode = 201
	ErrCodeFactoryNotAuthorized  ErrorCode = 202
	ErrCodeCampaignNotAuthorized ErrorCode = 203
	ErrCodeCannotRemoveOwner     ErrorCode = 204

	// Registration state errors
	ErrCodeAlreadyRegistered ErrorCode = 300
	ErrCodeNotRegistered     ErrorCode = 301
	ErrCodeNotAContract      ErrorCode = 302
	ErrCodeNotCompliant      ErrorCode = 303
	ErrCodeTokenNotSupported ErrorCode = 304
	ErrCodeAlreadyAdmin      ErrorCode = 305
	ErrCodeNotAdmin          ErrorCode = 306
	ErrCodeAlreadyEnabled    ErrorCode = 307
	ErrCodeAlreadyDisabled   ErrorCode = 308

	// Campaign state errors - checked against current derived state
	ErrCodeAdminOverrideActive ErrorCode = 400
	ErrCodeCampaignNotActive   ErrorCode = 401
	ErrCodeCampaignStillActive ErrorCode = 402
	ErrCodeGoalReached         ErrorCode = 403
	ErrCodeGoalNotReached      ErrorCode = 404
	ErrCodeAlreadyClaimed      ErrorCode = 405
	ErrCodeNothingToRefund     ErrorCode = 406
	ErrCodeAlreadyRefunded     ErrorCode = 407
	ErrCodeGracePeriodNotOver  ErrorCode = 408

	// Relay lookup errors
	ErrCodeFactoryNotFound  ErrorCode = 500
	ErrCodeCampaignNotFound ErrorCode = 501

	// External boundary failures
	ErrCodePoolOperationFailed ErrorCode = 600
	ErrCodeTokenTransferFailed ErrorCode = 601

	// Arithmetic errors - pre-operation bound checks, never silent wraps
	ErrCodeOverflow ErrorCode = 900
)

// Error is the uniform structured error returned by every protocol module:
// a small integer code plus the context address and amount. Callers branch
// on Code, never on message text.
type Error struct {
	Code    ErrorCode
	Address common.Address
	Amount  *uint256.Int
	cause   error
}

// NewError creates a protocol error carrying a context address.
func NewError(code ErrorCode, address common.Address) *Error {
	return &Error{Code: code, Address: address}
}

// NewAmountError creates a protocol error carrying both a context address
// and the offending amount.
func NewAmountError(code ErrorCode, address common.Address, amount *uint256.Int) *Error {
	return &Error{Code: code, Address: address, Amount: amount}
}

// WrapError creates a protocol error around an external failure so the
// cause is preserved for logs while callers still see a stable code.
func WrapError(code ErrorCode, address common.Address, cause error) *Error {
	return &Error{Code: code, Address: address, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("protocol error %d (address=%s amount=%s): %v", e.Code, e.Address.Hex(), AmountString(e.Amount), e.cause)
	}
	return fmt.Sprintf("protocol error %d (address=%s amount=%s)", e.Code, e.Address.Hex(), AmountString(e.Amount))
}

// Unwrap exposes the external cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches protocol errors by code so errors.Is works with sentinel
// instances built via NewError.
func (e *Error) Is(target error) bool {
	var pe *Error
	if !errors.As(target, &pe) {
		return false
	}
	return e.Code == pe.Code
}

// CodeOf extracts the protocol error code from err, or zero when err is not
// a protocol error.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return 0
}

// IsCode reports whether err is a protocol error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
