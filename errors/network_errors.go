package errors

import (
	"context"
	stderrors "errors"

	"github.com/mezonai/token/jsonx"
	"github.com/mezonai/token/ledger"
	"github.com/mezonai/token/service"
	"github.com/mezonai/token/transaction"
	"github.com/mezonai/token/utils"
)

// NetworkErrorCode represents standardized error codes for network operations
type NetworkErrorCode string

const (
	// General errors
	ErrCodeInternal NetworkErrorCode = "internal_error"

	// Validation errors
	ErrCodeInvalidRequest   NetworkErrorCode = "invalid_request"
	ErrCodeInvalidSignature NetworkErrorCode = "invalid_signature"
	ErrCodeInvalidAddress   NetworkErrorCode = "invalid_address"
	ErrCodeInvalidAmount    NetworkErrorCode = "invalid_amount"
	ErrCodeInvalidNonce     NetworkErrorCode = "invalid_nonce"

	// Business logic errors
	ErrCodeInsufficientFunds NetworkErrorCode = "insufficient_funds"

	// System errors
	ErrCodeRateLimited NetworkErrorCode = "rate_limited"
)

// NetworkError represents a standardized network error
type NetworkError struct {
	Code    NetworkErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	err, _ := jsonx.Marshal(NetworkError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgInvalidRequest    = "Request format is invalid"
	ErrMsgInvalidSignature  = "Transfer signature is invalid"
	ErrMsgInvalidAddress    = "Wallet address is invalid"
	ErrMsgInvalidAmount     = "Amount is invalid"
	ErrMsgInvalidNonce      = "Transfer nonce is invalid"
	ErrMsgInsufficientFunds = "Not enough tokens"
	ErrMsgInternal          = "Server error, please try again"
	ErrMsgRateLimited       = "Too many requests, please slow down"
)

// NewError creates a new NetworkError and returns it as error interface
func NewError(code NetworkErrorCode, message string) error {
	return &NetworkError{
		Code:    code,
		Message: message,
	}
}

// FromDomainError maps ledger, service and parsing errors to the error sent to
// clients. Unknown errors become internal_error without leaking their text.
func FromDomainError(err error) *NetworkError {
	if err == nil {
		return nil
	}

	var netErr *NetworkError
	var nonceErr *service.NonceError
	switch {
	case stderrors.As(err, &netErr):
		return netErr
	case stderrors.Is(err, ledger.ErrInsufficientBalance):
		return &NetworkError{Code: ErrCodeInsufficientFunds, Message: ErrMsgInsufficientFunds}
	case stderrors.As(err, &nonceErr):
		return &NetworkError{Code: ErrCodeInvalidNonce, Message: nonceErr.Error()}
	case stderrors.Is(err, service.ErrInvalidNonce):
		return &NetworkError{Code: ErrCodeInvalidNonce, Message: ErrMsgInvalidNonce}
	case stderrors.Is(err, service.ErrInvalidSignature):
		return &NetworkError{Code: ErrCodeInvalidSignature, Message: ErrMsgInvalidSignature}
	case stderrors.Is(err, utils.ErrInvalidAmount):
		return &NetworkError{Code: ErrCodeInvalidAmount, Message: ErrMsgInvalidAmount}
	case stderrors.Is(err, transaction.ErrMalformed):
		return &NetworkError{Code: ErrCodeInvalidRequest, Message: err.Error()}
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return &NetworkError{Code: ErrCodeInvalidRequest, Message: err.Error()}
	default:
		return &NetworkError{Code: ErrCodeInternal, Message: ErrMsgInternal}
	}
}
