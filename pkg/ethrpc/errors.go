package ethrpc

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	apperrors "github.com/chainsafe/erc20-ledger/pkg/app/errors"
)

// JSON-RPC error codes, as go-ethereum uses them.
const (
	errCodeReverted      = 3
	errCodeInvalidInput  = -32000
	errCodeInvalidParams = -32602
	errCodeInternal      = -32603
)

// revertSelector is the selector of Error(string), the standard revert payload.
var revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

// rpcError implements rpc.Error and rpc.DataError.
type rpcError struct {
	code    int
	message string
	data    string
}

func (e *rpcError) Error() string  { return e.message }
func (e *rpcError) ErrorCode() int { return e.code }

func (e *rpcError) ErrorData() any {
	if e.data == "" {
		return nil
	}
	return e.data
}

func invalidInput(format string, args ...any) error {
	return &rpcError{code: errCodeInvalidInput, message: fmt.Sprintf(format, args...)}
}

func invalidParams(format string, args ...any) error {
	return &rpcError{code: errCodeInvalidParams, message: fmt.Sprintf(format, args...)}
}

// revert reports a rejected contract call the way a reverting EVM call is
// reported: code 3 with the ABI-encoded reason as data.
func revert(reason string) error {
	e := &rpcError{code: errCodeReverted, message: "execution reverted: " + reason}
	stringTy, err := abi.NewType("string", "", nil)
	if err != nil {
		return e
	}
	packed, err := abi.Arguments{{Type: stringTy}}.Pack(reason)
	if err != nil {
		return e
	}
	e.data = hexutil.Encode(append(append([]byte{}, revertSelector...), packed...))
	return e
}

// toRPCError maps service errors onto JSON-RPC errors. Ledger rejections
// become reverts; the cause of internal failures is not exposed.
func toRPCError(err error) error {
	var svcErr *apperrors.ServiceError
	if !errors.As(err, &svcErr) {
		return &rpcError{code: errCodeInternal, message: "internal error"}
	}
	switch svcErr.Category {
	case apperrors.CategoryDataConflict, apperrors.CategoryDataError:
		return revert(svcErr.Message)
	case apperrors.CategoryResourceNotFound:
		return invalidInput("%s", svcErr.Message)
	default:
		return &rpcError{code: errCodeInternal, message: svcErr.Message}
	}
}
