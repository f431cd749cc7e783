package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/chainsafe/erc20-ledger/internal/metrics"
	apperrors "github.com/chainsafe/erc20-ledger/pkg/app/errors"
	"github.com/chainsafe/erc20-ledger/pkg/eventstore"
	"github.com/chainsafe/erc20-ledger/pkg/token"
)

// Operation names, used for logging, metrics and the REST routes.
const (
	OpTransfer          = "transfer"
	OpApprove           = "approve"
	OpTransferFrom      = "transferFrom"
	OpIncreaseAllowance = "increaseAllowance"
	OpDecreaseAllowance = "decreaseAllowance"
)

// DefaultGasUsed is the gas reported in receipts of journaled mutations.
const DefaultGasUsed = 52000

// Journal is the narrow persistence interface the service records mutations in.
// eventstore.Store satisfies it.
type Journal interface {
	SaveTransaction(ctx context.Context, tx *eventstore.Transaction, logs []*types.Log) error
	GetTransaction(ctx context.Context, hash common.Hash) (*eventstore.Transaction, error)
	GetLogsByTxHash(ctx context.Context, hash common.Hash) ([]*types.Log, error)
	GetLogs(ctx context.Context, filter eventstore.LogFilter) ([]*types.Log, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	TransactionCount(ctx context.Context, from common.Address) (uint64, error)
}

// Request carries the arguments of a mutation. Caller is the account the
// mutation is performed as. To is the recipient of transfer and transferFrom
// and the spender of the allowance operations; Owner is only read by
// transferFrom.
//
// TxHash, Nonce, Input and Raw describe the originating transaction when
// there is one (a signed raw transaction); otherwise they are synthesised.
type Request struct {
	Caller common.Address
	Owner  common.Address
	To     common.Address
	Amount *uint256.Int

	TxHash common.Hash
	Nonce  *uint64
	Input  []byte
	Raw    []byte
}

// Receipt is the outcome of a journaled mutation.
type Receipt struct {
	Transaction *eventstore.Transaction
	Logs        []*types.Log
	Events      []token.Event
	// Journaled is false when the ledger applied the mutation but the
	// journal write failed.
	Journaled bool
}

// Service defines the interface for the token ledger business logic
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	Metadata(ctx context.Context) token.Metadata
	BalanceOf(ctx context.Context, account common.Address) *uint256.Int
	Allowance(ctx context.Context, owner, spender common.Address) *uint256.Int

	Transfer(ctx context.Context, req *Request) (*Receipt, error)
	Approve(ctx context.Context, req *Request) (*Receipt, error)
	TransferFrom(ctx context.Context, req *Request) (*Receipt, error)
	IncreaseAllowance(ctx context.Context, req *Request) (*Receipt, error)
	DecreaseAllowance(ctx context.Context, req *Request) (*Receipt, error)

	Receipt(ctx context.Context, txHash common.Hash) (*Receipt, error)
	Logs(ctx context.Context, filter eventstore.LogFilter) ([]*types.Log, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	TransactionCount(ctx context.Context, account common.Address) (uint64, error)
}

type tokenService struct {
	ledger   *token.Ledger
	journal  Journal
	contract common.Address
	gasUsed  uint64
	logger   *zap.Logger

	// mu serialises mutations so journal order follows ledger order and a
	// transaction hash is never applied twice.
	mu sync.Mutex

	// unjournaled holds receipts of mutations the ledger applied but the
	// journal failed to record, so their hashes still count as applied.
	unjournaledMu sync.RWMutex
	unjournaled   map[common.Hash]*Receipt
}

// NewService creates a new token service. contract is the address the token
// is served at; it is the 'to' of every journaled transaction and the
// emitter of every log.
func NewService(ledger *token.Ledger, journal Journal, contract common.Address, logger *zap.Logger) Service {
	return &tokenService{
		ledger:      ledger,
		journal:     journal,
		contract:    contract,
		gasUsed:     DefaultGasUsed,
		logger:      logger,
		unjournaled: make(map[common.Hash]*Receipt),
	}
}

func (s *tokenService) Metadata(context.Context) token.Metadata {
	return s.ledger.Metadata()
}

func (s *tokenService) BalanceOf(_ context.Context, account common.Address) *uint256.Int {
	return s.ledger.BalanceOf(account)
}

func (s *tokenService) Allowance(_ context.Context, owner, spender common.Address) *uint256.Int {
	return s.ledger.Allowance(owner, spender)
}

func (s *tokenService) Transfer(ctx context.Context, req *Request) (*Receipt, error) {
	return s.mutate(ctx, OpTransfer, req, func() ([]token.Event, error) {
		return s.ledger.Transfer(req.Caller, req.To, req.Amount)
	})
}

func (s *tokenService) Approve(ctx context.Context, req *Request) (*Receipt, error) {
	return s.mutate(ctx, OpApprove, req, func() ([]token.Event, error) {
		return s.ledger.Approve(req.Caller, req.To, req.Amount)
	})
}

func (s *tokenService) TransferFrom(ctx context.Context, req *Request) (*Receipt, error) {
	return s.mutate(ctx, OpTransferFrom, req, func() ([]token.Event, error) {
		return s.ledger.TransferFrom(req.Caller, req.Owner, req.To, req.Amount)
	})
}

func (s *tokenService) IncreaseAllowance(ctx context.Context, req *Request) (*Receipt, error) {
	return s.mutate(ctx, OpIncreaseAllowance, req, func() ([]token.Event, error) {
		return s.ledger.IncreaseAllowance(req.Caller, req.To, req.Amount)
	})
}

func (s *tokenService) DecreaseAllowance(ctx context.Context, req *Request) (*Receipt, error) {
	return s.mutate(ctx, OpDecreaseAllowance, req, func() ([]token.Event, error) {
		return s.ledger.DecreaseAllowance(req.Caller, req.To, req.Amount)
	})
}

// mutate applies a ledger mutation and journals it. A hash that is already
// journaled returns the stored receipt without touching the ledger.
func (s *tokenService) mutate(ctx context.Context, op string, req *Request, apply func() ([]token.Event, error)) (*Receipt, error) {
	if req == nil {
		return nil, apperrors.BadRequestError(nil, "empty request")
	}
	start := time.Now()
	defer func() {
		metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	hash := req.TxHash
	if hash == (common.Hash{}) {
		hash = syntheticHash()
	} else if existing, err := s.Receipt(ctx, hash); err == nil {
		s.logger.Info("Transaction already applied, returning stored receipt",
			zap.String("operation", op),
			zap.String("tx_hash", hash.Hex()))
		return existing, nil
	} else if !apperrors.Is(err, apperrors.CategoryResourceNotFound) {
		return nil, err
	}

	events, err := apply()
	if err != nil {
		metrics.OperationsTotal.WithLabelValues(op, metrics.StatusFailure).Inc()
		metrics.RejectionsTotal.WithLabelValues(op, rejectionReason(err)).Inc()
		return nil, mapLedgerError(err)
	}
	metrics.OperationsTotal.WithLabelValues(op, metrics.StatusSuccess).Inc()
	if op == OpTransfer || op == OpTransferFrom {
		metrics.TransferAmount.WithLabelValues(op).Observe(wholeTokens(req.Amount, s.ledger.Decimals()))
	}

	tx, err := s.newTransaction(ctx, op, req, hash)
	if err != nil {
		return nil, err
	}
	logs := make([]*types.Log, len(events))
	for i, e := range events {
		logs[i] = e.Log(s.contract)
	}

	receipt := &Receipt{Transaction: tx, Logs: logs, Events: events, Journaled: true}
	if err := s.journal.SaveTransaction(ctx, tx, logs); err != nil {
		// The ledger already moved: report success, surface the gap in logs and
		// metrics, and remember the hash so a rebroadcast is not applied again.
		receipt.Journaled = false
		s.unjournaledMu.Lock()
		s.unjournaled[hash] = receipt
		s.unjournaledMu.Unlock()
		metrics.JournalErrorsTotal.WithLabelValues("save").Inc()
		s.logger.Warn("Failed to journal applied mutation",
			zap.String("operation", op),
			zap.String("tx_hash", hash.Hex()),
			zap.Error(err))
		return receipt, nil
	}
	metrics.LatestBlock.Set(float64(tx.BlockNumber))
	metrics.Holders.Set(float64(len(s.ledger.Holders())))
	return receipt, nil
}

func (s *tokenService) newTransaction(ctx context.Context, op string, req *Request, hash common.Hash) (*eventstore.Transaction, error) {
	input := req.Input
	if input == nil {
		packed, err := packRequest(op, req)
		if err != nil {
			return nil, apperrors.GeneralError(fmt.Errorf("pack %s call: %w", op, err))
		}
		input = packed
	}

	var nonce uint64
	if req.Nonce != nil {
		nonce = *req.Nonce
	} else {
		n, err := s.journal.TransactionCount(ctx, req.Caller)
		if err != nil {
			metrics.JournalErrorsTotal.WithLabelValues("count").Inc()
			s.logger.Warn("Failed to read nonce from journal", zap.Error(err))
		}
		nonce = n
	}

	return &eventstore.Transaction{
		Hash:    hash,
		From:    req.Caller,
		To:      s.contract,
		Nonce:   nonce,
		Input:   input,
		Status:  types.ReceiptStatusSuccessful,
		GasUsed: s.gasUsed,
		Raw:     req.Raw,
	}, nil
}

func (s *tokenService) Receipt(ctx context.Context, txHash common.Hash) (*Receipt, error) {
	s.unjournaledMu.RLock()
	pending, ok := s.unjournaled[txHash]
	s.unjournaledMu.RUnlock()
	if ok {
		return pending, nil
	}

	tx, err := s.journal.GetTransaction(ctx, txHash)
	if err != nil {
		if errors.Is(err, eventstore.ErrNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "transaction not found")
		}
		metrics.JournalErrorsTotal.WithLabelValues("get").Inc()
		return nil, apperrors.DependencyError(err, "journal unavailable")
	}
	logs, err := s.journal.GetLogsByTxHash(ctx, txHash)
	if err != nil {
		metrics.JournalErrorsTotal.WithLabelValues("get").Inc()
		return nil, apperrors.DependencyError(err, "journal unavailable")
	}

	events := make([]token.Event, 0, len(logs))
	for _, l := range logs {
		e, err := token.EventFromLog(l)
		if err != nil {
			return nil, apperrors.GeneralError(fmt.Errorf("decode log %d of %s: %w", l.Index, txHash.Hex(), err))
		}
		events = append(events, e)
	}
	return &Receipt{Transaction: tx, Logs: logs, Events: events, Journaled: true}, nil
}

func (s *tokenService) Logs(ctx context.Context, filter eventstore.LogFilter) ([]*types.Log, error) {
	logs, err := s.journal.GetLogs(ctx, filter)
	if err != nil {
		metrics.JournalErrorsTotal.WithLabelValues("logs").Inc()
		return nil, apperrors.DependencyError(err, "journal unavailable")
	}
	return logs, nil
}

func (s *tokenService) LatestBlockNumber(ctx context.Context) (uint64, error) {
	n, err := s.journal.LatestBlockNumber(ctx)
	if err != nil {
		metrics.JournalErrorsTotal.WithLabelValues("latest_block").Inc()
		return 0, apperrors.DependencyError(err, "journal unavailable")
	}
	return n, nil
}

func (s *tokenService) TransactionCount(ctx context.Context, account common.Address) (uint64, error) {
	n, err := s.journal.TransactionCount(ctx, account)
	if err != nil {
		metrics.JournalErrorsTotal.WithLabelValues("count").Inc()
		return 0, apperrors.DependencyError(err, "journal unavailable")
	}
	return n, nil
}

// syntheticHash identifies a mutation that did not arrive as a signed transaction.
func syntheticHash() common.Hash {
	id := uuid.New()
	return crypto.Keccak256Hash(id[:])
}

func packRequest(op string, req *Request) ([]byte, error) {
	amount := req.Amount.ToBig()
	switch op {
	case OpTransfer:
		return token.PackCall(token.MethodTransfer, req.To, amount)
	case OpApprove:
		return token.PackCall(token.MethodApprove, req.To, amount)
	case OpTransferFrom:
		return token.PackCall(token.MethodTransferFrom, req.Owner, req.To, amount)
	case OpIncreaseAllowance:
		return token.PackCall(token.MethodIncreaseAllowance, req.To, amount)
	case OpDecreaseAllowance:
		return token.PackCall(token.MethodDecreaseAllowance, req.To, amount)
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

// mapLedgerError turns ledger sentinels into service errors. errors.Is keeps
// matching the sentinel through the wrapper.
func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, token.ErrInsufficientBalance):
		return apperrors.ConflictError(err, "insufficient balance")
	case errors.Is(err, token.ErrInsufficientAllowance):
		return apperrors.ConflictError(err, "insufficient allowance")
	case errors.Is(err, token.ErrInvalidRecipient):
		return apperrors.BadRequestError(err, "invalid recipient")
	case errors.Is(err, token.ErrInvalidSpender):
		return apperrors.BadRequestError(err, "invalid spender")
	case errors.Is(err, token.ErrOverflow):
		return apperrors.BadRequestError(err, "amount overflow")
	case errors.Is(err, token.ErrInvalidAmount):
		return apperrors.BadRequestError(err, "invalid amount")
	default:
		return apperrors.GeneralError(err)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, token.ErrInsufficientAllowance):
		return "insufficient_allowance"
	case errors.Is(err, token.ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, token.ErrInvalidSpender):
		return "invalid_spender"
	case errors.Is(err, token.ErrOverflow):
		return "overflow"
	case errors.Is(err, token.ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "other"
	}
}

func wholeTokens(amount *uint256.Int, decimals uint8) float64 {
	if amount == nil {
		return 0
	}
	f, _ := token.AmountDecimal(amount, decimals).Float64()
	return f
}
