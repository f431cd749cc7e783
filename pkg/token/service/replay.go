package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/chainsafe/erc20-ledger/pkg/eventstore"
	"github.com/chainsafe/erc20-ledger/pkg/token"
)

// replayPageBlocks is how many blocks are read from the journal at a time.
const replayPageBlocks = 1000

var errMalformedInput = errors.New("malformed call input")

// Replay re-applies every journaled transaction to ledger in block order and
// returns how many were applied. ledger must be fresh from the same genesis
// the journal was written against.
func Replay(ctx context.Context, ledger *token.Ledger, journal Journal, logger *zap.Logger) (int, error) {
	latest, err := journal.LatestBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("read latest block: %w", err)
	}

	applied := 0
	for from := uint64(1); from <= latest; from += replayPageBlocks {
		to := min(from+replayPageBlocks-1, latest)
		logs, err := journal.GetLogs(ctx, eventstore.LogFilter{FromBlock: &from, ToBlock: &to})
		if err != nil {
			return applied, fmt.Errorf("read logs of blocks %d-%d: %w", from, to, err)
		}

		var last common.Hash
		for _, l := range logs {
			if l.TxHash == last {
				continue
			}
			last = l.TxHash

			tx, err := journal.GetTransaction(ctx, l.TxHash)
			if err != nil {
				return applied, fmt.Errorf("read transaction %s: %w", l.TxHash.Hex(), err)
			}
			if err := replayCall(ledger, tx.From, tx.Input); err != nil {
				return applied, fmt.Errorf("replay transaction %s in block %d: %w", tx.Hash.Hex(), tx.BlockNumber, err)
			}
			applied++
		}
	}

	logger.Info("Replayed journal",
		zap.Int("transactions", applied),
		zap.Uint64("latest_block", latest))
	return applied, nil
}

func replayCall(ledger *token.Ledger, caller common.Address, input []byte) error {
	if len(input) < 4 {
		return errMalformedInput
	}
	erc20 := token.ABI()
	method, err := erc20.MethodById(input[:4])
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedInput, err)
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedInput, err)
	}

	addr := func(i int) common.Address { return args[i].(common.Address) }
	amount := func(i int) *uint256.Int {
		v, _ := uint256.FromBig(args[i].(*big.Int))
		return v
	}

	switch method.Name {
	case token.MethodTransfer:
		_, err = ledger.Transfer(caller, addr(0), amount(1))
	case token.MethodApprove:
		_, err = ledger.Approve(caller, addr(0), amount(1))
	case token.MethodTransferFrom:
		_, err = ledger.TransferFrom(caller, addr(0), addr(1), amount(2))
	case token.MethodIncreaseAllowance:
		_, err = ledger.IncreaseAllowance(caller, addr(0), amount(1))
	case token.MethodDecreaseAllowance:
		_, err = ledger.DecreaseAllowance(caller, addr(0), amount(1))
	default:
		return fmt.Errorf("%w: %s does not mutate", errMalformedInput, method.Name)
	}
	return err
}
