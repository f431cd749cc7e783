package token

import "errors"

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidRecipient      = errors.New("invalid recipient")
	ErrInvalidSpender        = errors.New("invalid spender")
	ErrOverflow              = errors.New("amount overflow")
	ErrInvalidConfig         = errors.New("invalid token config")
	ErrInvalidAmount         = errors.New("invalid amount")

	// ErrConservation is returned by CheckConservation when the balances do not
	// add up to the total supply.
	ErrConservation = errors.New("balances do not sum to total supply")
)
