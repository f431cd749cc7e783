package service

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/erc20-ledger/pkg/app/errors"
	"github.com/chainsafe/erc20-ledger/pkg/eventstore"
	"github.com/chainsafe/erc20-ledger/pkg/token"
)

const serviceName = "TokenService"

// logService wraps Service with automatic logging of all mutations
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the token Service.
// Mutations are logged on entry and exit with their duration; queries are
// logged at debug level only.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) Metadata(ctx context.Context) token.Metadata {
	return ls.svc.Metadata(ctx)
}

func (ls *logService) BalanceOf(ctx context.Context, account common.Address) *uint256.Int {
	balance := ls.svc.BalanceOf(ctx, account)
	ls.logger.Debug("BalanceOf",
		zap.String("service", serviceName),
		zap.String("account", account.Hex()),
		zap.Stringer("balance", balance),
	)
	return balance
}

func (ls *logService) Allowance(ctx context.Context, owner, spender common.Address) *uint256.Int {
	allowance := ls.svc.Allowance(ctx, owner, spender)
	ls.logger.Debug("Allowance",
		zap.String("service", serviceName),
		zap.String("owner", owner.Hex()),
		zap.String("spender", spender.Hex()),
		zap.Stringer("allowance", allowance),
	)
	return allowance
}

// Transfer wraps the service method with logging
func (ls *logService) Transfer(ctx context.Context, req *Request) (*Receipt, error) {
	return ls.logMutation(ctx, "Transfer", req, ls.svc.Transfer)
}

// Approve wraps the service method with logging
func (ls *logService) Approve(ctx context.Context, req *Request) (*Receipt, error) {
	return ls.logMutation(ctx, "Approve", req, ls.svc.Approve)
}

// TransferFrom wraps the service method with logging
func (ls *logService) TransferFrom(ctx context.Context, req *Request) (*Receipt, error) {
	return ls.logMutation(ctx, "TransferFrom", req, ls.svc.TransferFrom)
}

// IncreaseAllowance wraps the service method with logging
func (ls *logService) IncreaseAllowance(ctx context.Context, req *Request) (*Receipt, error) {
	return ls.logMutation(ctx, "IncreaseAllowance", req, ls.svc.IncreaseAllowance)
}

// DecreaseAllowance wraps the service method with logging
func (ls *logService) DecreaseAllowance(ctx context.Context, req *Request) (*Receipt, error) {
	return ls.logMutation(ctx, "DecreaseAllowance", req, ls.svc.DecreaseAllowance)
}

func (ls *logService) logMutation(
	ctx context.Context,
	method string,
	req *Request,
	next func(context.Context, *Request) (*Receipt, error),
) (resp *Receipt, err error) {
	start := time.Now()

	fields := []zap.Field{
		zap.String("service", serviceName),
		zap.String("method", method),
	}
	if req != nil {
		fields = append(fields,
			zap.String("caller", req.Caller.Hex()),
			zap.String("to", req.To.Hex()),
			zap.Stringer("amount", req.Amount),
		)
		if req.Owner != (common.Address{}) {
			fields = append(fields, zap.String("owner", req.Owner.Hex()))
		}
	}
	ls.logger.Info(method+" started", fields...)

	defer func() {
		fields = append(fields, zap.Duration("duration", time.Since(start)))

		switch {
		case err != nil && apperrors.IsInternalError(err):
			ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		case err != nil:
			// Rejections are ordinary outcomes of a ledger.
			ls.logger.Info(method+" rejected", append(fields, zap.Error(err))...)
		default:
			ls.logger.Info(method+" completed", append(fields,
				zap.String("tx_hash", resp.Transaction.Hash.Hex()),
				zap.Uint64("block_number", resp.Transaction.BlockNumber),
				zap.Int("events", len(resp.Events)),
				zap.Bool("journaled", resp.Journaled),
			)...)
		}
	}()

	return next(ctx, req)
}

func (ls *logService) Receipt(ctx context.Context, txHash common.Hash) (*Receipt, error) {
	return ls.svc.Receipt(ctx, txHash)
}

func (ls *logService) Logs(ctx context.Context, filter eventstore.LogFilter) (logs []*types.Log, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.logger.Error("Logs failed",
				zap.String("service", serviceName),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			return
		}
		ls.logger.Debug("Logs",
			zap.String("service", serviceName),
			zap.Int("count", len(logs)),
			zap.Duration("duration", time.Since(start)),
		)
	}()
	return ls.svc.Logs(ctx, filter)
}

func (ls *logService) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return ls.svc.LatestBlockNumber(ctx)
}

func (ls *logService) TransactionCount(ctx context.Context, account common.Address) (uint64, error) {
	return ls.svc.TransactionCount(ctx, account)
}
