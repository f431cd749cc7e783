// Package auth authenticates the callers of ledger mutations: EIP-191
// signatures over the request body, or bearer JWTs from a configured JWKS.
package auth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidAddress is returned for strings that are not 0x-prefixed 20 byte hex.
var ErrInvalidAddress = errors.New("invalid EVM address")

// Signature recovery ids as produced by personal_sign wallets.
const legacyRecoveryOffset = 27

// VerifyEIP191Signature returns the account that personal_signed body. The
// signature is 65 bytes of hex, with or without 0x, and v may be 0/1 or 27/28.
func VerifyEIP191Signature(body []byte, signature string) (common.Address, error) {
	if !strings.HasPrefix(signature, "0x") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("signature is not hex: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature is %d bytes, want %d", len(sig), crypto.SignatureLength)
	}
	if sig[crypto.RecoveryIDOffset] >= legacyRecoveryOffset {
		sig[crypto.RecoveryIDOffset] -= legacyRecoveryOffset
	}

	pub, err := crypto.SigToPub(accounts.TextHash(body), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SignEIP191 personal_signs body with key, encoding v as 27/28 like wallets do.
func SignEIP191(key *ecdsa.PrivateKey, body []byte) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash(body), key)
	if err != nil {
		return "", fmt.Errorf("sign body: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += legacyRecoveryOffset
	return hexutil.Encode(sig), nil
}

// ParseAddress converts a 0x-prefixed hex address. The zero address is
// accepted; rejecting it is the ledger's decision.
func ParseAddress(address string) (common.Address, error) {
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return common.HexToAddress(address), nil
}
