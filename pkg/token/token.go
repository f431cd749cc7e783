// Package token implements the in-memory ledger of a standard ERC-20 token:
// immutable metadata, balances, allowances and the events every mutation emits.
package token

import (
	"fmt"

	"github.com/holiman/uint256"
)

// DefaultDecimals is the number of decimals used when none is configured.
const DefaultDecimals uint8 = 18

// Metadata describes the immutable properties of a token.
type Metadata struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *uint256.Int
}

// Validate checks the metadata can back a ledger.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidConfig)
	}
	if m.Symbol == "" {
		return fmt.Errorf("%w: symbol is empty", ErrInvalidConfig)
	}
	if m.TotalSupply == nil || m.TotalSupply.IsZero() {
		return fmt.Errorf("%w: total supply must be positive", ErrInvalidConfig)
	}
	return nil
}

func (m Metadata) clone() Metadata {
	c := m
	if m.TotalSupply != nil {
		c.TotalSupply = m.TotalSupply.Clone()
	}
	return c
}

// ParseAmount parses a base-unit decimal string into an amount.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return v, nil
}

// MaxAmount returns the largest representable amount, 2^256-1.
func MaxAmount() *uint256.Int {
	return new(uint256.Int).Not(new(uint256.Int))
}
