package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/chainsafe/erc20-ledger/pkg/app/errors"
	"github.com/chainsafe/erc20-ledger/pkg/eventstore"
	"github.com/chainsafe/erc20-ledger/pkg/token"
)

var (
	contract   = common.HexToAddress("0x00000000000000000000000000000000000e2c20")
	creator    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	recipient1 = common.HexToAddress("0x2000000000000000000000000000000000000002")
	recipient2 = common.HexToAddress("0x3000000000000000000000000000000000000003")
	spender    = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

// mockJournal wraps a real journal; non-nil Func fields replace its methods.
type mockJournal struct {
	eventstore.Store
	SaveTransactionFunc func(ctx context.Context, tx *eventstore.Transaction, logs []*types.Log) error
	GetTransactionFunc  func(ctx context.Context, hash common.Hash) (*eventstore.Transaction, error)
}

func (m *mockJournal) SaveTransaction(ctx context.Context, tx *eventstore.Transaction, logs []*types.Log) error {
	if m.SaveTransactionFunc != nil {
		return m.SaveTransactionFunc(ctx, tx, logs)
	}
	return m.Store.SaveTransaction(ctx, tx, logs)
}

func (m *mockJournal) GetTransaction(ctx context.Context, hash common.Hash) (*eventstore.Transaction, error) {
	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, hash)
	}
	return m.Store.GetTransaction(ctx, hash)
}

func amount(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

func newTestLedger(t *testing.T) *token.Ledger {
	t.Helper()
	l, err := token.NewLedger(token.Metadata{
		Name:        "Test Token",
		Symbol:      "TST",
		Decimals:    18,
		TotalSupply: amount("10000000000000000000"),
	}, creator)
	require.NoError(t, err)
	return l
}

func newTestService(t *testing.T, journal Journal) (Service, *token.Ledger) {
	t.Helper()
	l := newTestLedger(t)
	return NewService(l, journal, contract, zap.NewNop()), l
}

func TestService_TransferApproveTransferFrom(t *testing.T) {
	ctx := context.Background()
	journal := eventstore.NewMemoryStore(31337)
	svc, l := newTestService(t, journal)

	r, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("500000000000000000")})
	require.NoError(t, err)
	assert.True(t, r.Journaled)
	assert.Equal(t, uint64(1), r.Transaction.BlockNumber)
	assert.Equal(t, contract, r.Transaction.To)
	require.Len(t, r.Logs, 1)
	assert.Equal(t, contract, r.Logs[0].Address)
	assert.Equal(t, token.TransferTopic, r.Logs[0].Topics[0])

	r, err = svc.Approve(ctx, &Request{Caller: recipient1, To: spender, Amount: amount("300000000000000000")})
	require.NoError(t, err)
	require.Len(t, r.Events, 1)
	assert.Equal(t, token.EventApproval, r.Events[0].Kind)

	r, err = svc.TransferFrom(ctx, &Request{
		Caller: spender,
		Owner:  recipient1,
		To:     recipient2,
		Amount: amount("300000000000000000"),
	})
	require.NoError(t, err)
	require.Len(t, r.Events, 1)
	assert.Equal(t, token.EventTransfer, r.Events[0].Kind)
	assert.Equal(t, recipient1, r.Events[0].From)
	assert.Equal(t, uint64(3), r.Transaction.BlockNumber)

	assert.Equal(t, "9500000000000000000", svc.BalanceOf(ctx, creator).Dec())
	assert.Equal(t, "200000000000000000", svc.BalanceOf(ctx, recipient1).Dec())
	assert.Equal(t, "300000000000000000", svc.BalanceOf(ctx, recipient2).Dec())
	assert.True(t, svc.Allowance(ctx, recipient1, spender).IsZero())
	require.NoError(t, l.CheckConservation())

	latest, err := svc.LatestBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), latest)

	logs, err := svc.Logs(ctx, eventstore.LogFilter{Topics: [][]common.Hash{{token.TransferTopic}}})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestService_ReceiptRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, eventstore.NewMemoryStore(1))

	r, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("7")})
	require.NoError(t, err)

	got, err := svc.Receipt(ctx, r.Transaction.Hash)
	require.NoError(t, err)
	assert.Equal(t, r.Transaction.Hash, got.Transaction.Hash)
	assert.Equal(t, r.Transaction.BlockHash, got.Transaction.BlockHash)
	require.Len(t, got.Events, 1)
	assert.Equal(t, recipient1, got.Events[0].To)
	assert.Equal(t, "7", got.Events[0].Value.Dec())

	call, err := token.PackCall(token.MethodTransfer, recipient1, amount("7").ToBig())
	require.NoError(t, err)
	assert.Equal(t, call, got.Transaction.Input)
}

func TestService_ReceiptNotFound(t *testing.T) {
	svc, _ := newTestService(t, eventstore.NewMemoryStore(1))

	_, err := svc.Receipt(context.Background(), common.HexToHash("0x01"))
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound))
}

func TestService_DuplicateHashIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, eventstore.NewMemoryStore(1))
	hash := common.HexToHash("0xabcdef")

	first, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("10"), TxHash: hash})
	require.NoError(t, err)
	second, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("10"), TxHash: hash})
	require.NoError(t, err)

	assert.Equal(t, first.Transaction.BlockNumber, second.Transaction.BlockNumber)
	assert.Equal(t, "10", svc.BalanceOf(ctx, recipient1).Dec())
}

func TestService_SyntheticHashesAndNonces(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, eventstore.NewMemoryStore(1))

	a, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("1")})
	require.NoError(t, err)
	b, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("1")})
	require.NoError(t, err)

	assert.NotEqual(t, common.Hash{}, a.Transaction.Hash)
	assert.NotEqual(t, a.Transaction.Hash, b.Transaction.Hash)
	assert.Equal(t, uint64(0), a.Transaction.Nonce)
	assert.Equal(t, uint64(1), b.Transaction.Nonce)

	nonce := uint64(42)
	input := []byte{0xa9, 0x05, 0x9c, 0xbb}
	c, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("1"), Nonce: &nonce, Input: input})
	require.NoError(t, err)
	assert.Equal(t, nonce, c.Transaction.Nonce)
	assert.Equal(t, input, c.Transaction.Input)

	count, err := svc.TransactionCount(ctx, creator)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestService_LedgerRejections(t *testing.T) {
	tests := []struct {
		name     string
		call     func(Service) error
		sentinel error
		category apperrors.Category
	}{
		{
			name: "insufficient balance",
			call: func(s Service) error {
				_, err := s.Transfer(context.Background(), &Request{Caller: recipient1, To: recipient2, Amount: amount("1")})
				return err
			},
			sentinel: token.ErrInsufficientBalance,
			category: apperrors.CategoryDataConflict,
		},
		{
			name: "insufficient allowance",
			call: func(s Service) error {
				_, err := s.TransferFrom(context.Background(), &Request{Caller: spender, Owner: creator, To: recipient2, Amount: amount("1")})
				return err
			},
			sentinel: token.ErrInsufficientAllowance,
			category: apperrors.CategoryDataConflict,
		},
		{
			name: "zero recipient",
			call: func(s Service) error {
				_, err := s.Transfer(context.Background(), &Request{Caller: creator, Amount: amount("1")})
				return err
			},
			sentinel: token.ErrInvalidRecipient,
			category: apperrors.CategoryDataError,
		},
		{
			name: "zero spender",
			call: func(s Service) error {
				_, err := s.Approve(context.Background(), &Request{Caller: creator, Amount: amount("1")})
				return err
			},
			sentinel: token.ErrInvalidSpender,
			category: apperrors.CategoryDataError,
		},
		{
			name: "decrease below zero",
			call: func(s Service) error {
				_, err := s.DecreaseAllowance(context.Background(), &Request{Caller: creator, To: spender, Amount: amount("1")})
				return err
			},
			sentinel: token.ErrInsufficientAllowance,
			category: apperrors.CategoryDataConflict,
		},
		{
			name: "increase overflow",
			call: func(s Service) error {
				if _, err := s.Approve(context.Background(), &Request{Caller: creator, To: spender, Amount: token.MaxAmount()}); err != nil {
					return err
				}
				_, err := s.IncreaseAllowance(context.Background(), &Request{Caller: creator, To: spender, Amount: amount("1")})
				return err
			},
			sentinel: token.ErrOverflow,
			category: apperrors.CategoryDataError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			journal := eventstore.NewMemoryStore(1)
			svc, l := newTestService(t, journal)

			before, err := journal.LatestBlockNumber(context.Background())
			require.NoError(t, err)

			err = tc.call(svc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)
			assert.Equal(t, tc.category, apperrors.CategoryOf(err))
			assert.NoError(t, l.CheckConservation())

			after, err := journal.LatestBlockNumber(context.Background())
			require.NoError(t, err)
			// Only the setup approve of the overflow case may have been journaled.
			assert.LessOrEqual(t, after-before, uint64(1))
		})
	}
}

func TestService_JournalFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	journal := &mockJournal{
		Store: eventstore.NewMemoryStore(1),
		SaveTransactionFunc: func(context.Context, *eventstore.Transaction, []*types.Log) error {
			return errors.New("connection refused")
		},
	}
	svc, _ := newTestService(t, journal)

	r, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("5")})
	require.NoError(t, err)
	assert.False(t, r.Journaled)
	assert.Equal(t, "5", svc.BalanceOf(ctx, recipient1).Dec())
}

func TestService_UnjournaledHashIsNotAppliedTwice(t *testing.T) {
	ctx := context.Background()
	saves := 0
	journal := &mockJournal{
		Store: eventstore.NewMemoryStore(1),
		SaveTransactionFunc: func(context.Context, *eventstore.Transaction, []*types.Log) error {
			saves++
			return errors.New("connection refused")
		},
	}
	svc, _ := newTestService(t, journal)
	hash := common.HexToHash("0x0a")

	first, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("1000"), TxHash: hash})
	require.NoError(t, err)
	require.False(t, first.Journaled)

	got, err := svc.Receipt(ctx, hash)
	require.NoError(t, err)
	assert.False(t, got.Journaled)
	assert.Equal(t, hash, got.Transaction.Hash)

	again, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("1000"), TxHash: hash})
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, "1000", svc.BalanceOf(ctx, recipient1).Dec())
	assert.Equal(t, 1, saves)
}

func TestService_JournalUnavailableBlocksReplayCheck(t *testing.T) {
	ctx := context.Background()
	journal := &mockJournal{
		Store: eventstore.NewMemoryStore(1),
		GetTransactionFunc: func(context.Context, common.Hash) (*eventstore.Transaction, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc, _ := newTestService(t, journal)

	_, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("5"), TxHash: common.HexToHash("0x05")})
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryDependencyFailure, apperrors.CategoryOf(err))
	assert.True(t, svc.BalanceOf(ctx, recipient1).IsZero())
}

func TestService_NilRequest(t *testing.T) {
	svc, _ := newTestService(t, eventstore.NewMemoryStore(1))

	_, err := svc.Transfer(context.Background(), nil)
	assert.Equal(t, apperrors.CategoryDataError, apperrors.CategoryOf(err))
}

func TestLogService_LogsOutcome(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	inner, _ := newTestService(t, eventstore.NewMemoryStore(1))
	svc := NewLog(inner, zap.New(core))
	ctx := context.Background()

	_, err := svc.Transfer(ctx, &Request{Caller: creator, To: recipient1, Amount: amount("1")})
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, &Request{Caller: recipient2, To: recipient1, Amount: amount("1")})
	require.Error(t, err)

	assert.Equal(t, 2, recorded.FilterMessage("Transfer started").Len())
	assert.Equal(t, 1, recorded.FilterMessage("Transfer completed").Len())
	assert.Equal(t, 1, recorded.FilterMessage("Transfer rejected").Len())
	assert.Zero(t, recorded.FilterMessage("Transfer failed").Len())
}
