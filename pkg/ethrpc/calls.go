package ethrpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/chainsafe/erc20-ledger/pkg/token"
	"github.com/chainsafe/erc20-ledger/pkg/token/service"
)

// contractCall is a decoded call to the token contract.
type contractCall struct {
	method abi.Method
	args   []any
}

func decodeCall(input []byte) (*contractCall, error) {
	if len(input) < 4 {
		return nil, invalidInput("missing function selector")
	}
	erc20 := token.ABI()
	method, err := erc20.MethodById(input[:4])
	if err != nil {
		return nil, invalidInput("unknown function selector 0x%x", input[:4])
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, invalidParams("failed to decode %s arguments: %v", method.Name, err)
	}
	return &contractCall{method: *method, args: args}, nil
}

func (c *contractCall) name() string { return c.method.Name }

func (c *contractCall) mutates() bool {
	switch c.method.Name {
	case token.MethodTransfer, token.MethodApprove, token.MethodTransferFrom,
		token.MethodIncreaseAllowance, token.MethodDecreaseAllowance:
		return true
	default:
		return false
	}
}

func (c *contractCall) address(i int) common.Address {
	return c.args[i].(common.Address)
}

func (c *contractCall) amount(i int) *uint256.Int {
	// Unpacked uint256 values always fit.
	v, _ := uint256.FromBig(c.args[i].(*big.Int))
	return v
}

// pack ABI-encodes the return values of the call.
func (c *contractCall) pack(values ...any) ([]byte, error) {
	out, err := c.method.Outputs.Pack(values...)
	if err != nil {
		return nil, &rpcError{code: errCodeInternal, message: "failed to encode result"}
	}
	return out, nil
}

// request converts a mutating call into a service request made by caller.
func (c *contractCall) request(caller common.Address) *service.Request {
	req := &service.Request{Caller: caller}
	switch c.method.Name {
	case token.MethodTransferFrom:
		req.Owner = c.address(0)
		req.To = c.address(1)
		req.Amount = c.amount(2)
	default:
		// transfer(to, value), approve(spender, value) and the allowance helpers
		req.To = c.address(0)
		req.Amount = c.amount(1)
	}
	return req
}

// dispatch applies a mutating call through the service.
func dispatch(ctx context.Context, svc service.Service, name string, req *service.Request) (*service.Receipt, error) {
	switch name {
	case token.MethodTransfer:
		return svc.Transfer(ctx, req)
	case token.MethodApprove:
		return svc.Approve(ctx, req)
	case token.MethodTransferFrom:
		return svc.TransferFrom(ctx, req)
	case token.MethodIncreaseAllowance:
		return svc.IncreaseAllowance(ctx, req)
	case token.MethodDecreaseAllowance:
		return svc.DecreaseAllowance(ctx, req)
	default:
		return nil, invalidInput("%s is not a state-changing function", name)
	}
}

// simulate checks a mutation against the current state without applying it.
// Checks follow the ledger's order so the reported reason matches what a
// submission would fail with.
func simulate(ctx context.Context, svc service.Service, name string, req *service.Request) error {
	var zero common.Address
	switch name {
	case token.MethodTransfer:
		if req.To == zero {
			return revert("invalid recipient")
		}
		if svc.BalanceOf(ctx, req.Caller).Lt(req.Amount) {
			return revert("insufficient balance")
		}
	case token.MethodApprove:
		if req.To == zero {
			return revert("invalid spender")
		}
	case token.MethodTransferFrom:
		if req.To == zero {
			return revert("invalid recipient")
		}
		if svc.Allowance(ctx, req.Owner, req.Caller).Lt(req.Amount) {
			return revert("insufficient allowance")
		}
		if svc.BalanceOf(ctx, req.Owner).Lt(req.Amount) {
			return revert("insufficient balance")
		}
	case token.MethodIncreaseAllowance:
		if req.To == zero {
			return revert("invalid spender")
		}
		if _, overflow := new(uint256.Int).AddOverflow(svc.Allowance(ctx, req.Caller, req.To), req.Amount); overflow {
			return revert("amount overflow")
		}
	case token.MethodDecreaseAllowance:
		if req.To == zero {
			return revert("invalid spender")
		}
		if svc.Allowance(ctx, req.Caller, req.To).Lt(req.Amount) {
			return revert("insufficient allowance")
		}
	}
	return nil
}
