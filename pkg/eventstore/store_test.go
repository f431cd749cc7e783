package eventstore

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChainID = 31337

var (
	contract      = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice         = common.HexToAddress("0x1000000000000000000000000000000000000001")
	bob           = common.HexToAddress("0x2000000000000000000000000000000000000002")
	transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	approvalTopic = common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925")
)

func testLog(topic common.Hash, from, to common.Address, value byte) *types.Log {
	data := make([]byte, 32)
	data[31] = value
	return &types.Log{
		Address: contract,
		Topics:  []common.Hash{topic, common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes())},
		Data:    data,
	}
}

func testTx(hash byte, from common.Address, nonce uint64) *Transaction {
	return &Transaction{
		Hash:    common.Hash{hash},
		From:    from,
		To:      contract,
		Nonce:   nonce,
		Input:   []byte{0xa9, 0x05, 0x9c, 0xbb},
		Status:  types.ReceiptStatusSuccessful,
		GasUsed: 52000,
	}
}

// runStoreSuite exercises the Store contract against any implementation.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("save and get", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		tx := testTx(1, alice, 0)
		tx.Raw = []byte{0x02, 0xf8, 0x6b}
		require.NoError(t, s.SaveTransaction(ctx, tx, []*types.Log{testLog(transferTopic, alice, bob, 5)}))
		assert.Equal(t, uint64(1), tx.BlockNumber)
		assert.Equal(t, BlockHash(testChainID, 1), tx.BlockHash)

		got, err := s.GetTransaction(ctx, tx.Hash)
		require.NoError(t, err)
		assert.Equal(t, tx.Hash, got.Hash)
		assert.Equal(t, alice, got.From)
		assert.Equal(t, contract, got.To)
		assert.Equal(t, tx.Input, got.Input)
		assert.Equal(t, tx.Raw, got.Raw)
		assert.Equal(t, uint64(1), got.BlockNumber)
		assert.Equal(t, tx.BlockHash, got.BlockHash)
		assert.Equal(t, uint64(52000), got.GasUsed)

		logs, err := s.GetLogsByTxHash(ctx, tx.Hash)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, contract, logs[0].Address)
		assert.Equal(t, transferTopic, logs[0].Topics[0])
		assert.Equal(t, tx.Hash, logs[0].TxHash)
		assert.Equal(t, uint64(1), logs[0].BlockNumber)
		assert.Equal(t, uint(0), logs[0].Index)
		assert.Equal(t, byte(5), logs[0].Data[31])
	})

	t.Run("unknown hash", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.GetTransaction(ctx, common.Hash{0xff})
		require.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetLogsByTxHash(ctx, common.Hash{0xff})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate hash", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.SaveTransaction(ctx, testTx(1, alice, 0), nil))
		err := s.SaveTransaction(ctx, testTx(1, alice, 1), nil)
		require.ErrorIs(t, err, ErrDuplicate)

		latest, err := s.LatestBlockNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), latest)
	})

	t.Run("blocks and counts", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		latest, err := s.LatestBlockNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), latest)

		require.NoError(t, s.SaveTransaction(ctx, testTx(1, alice, 0), nil))
		require.NoError(t, s.SaveTransaction(ctx, testTx(2, alice, 1), nil))
		require.NoError(t, s.SaveTransaction(ctx, testTx(3, bob, 0), nil))

		latest, err = s.LatestBlockNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), latest)

		n, err := s.TransactionCount(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), n)

		n, err = s.TransactionCount(ctx, common.Address{0x42})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), n)
	})

	t.Run("filter logs", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.SaveTransaction(ctx, testTx(1, alice, 0), []*types.Log{testLog(transferTopic, alice, bob, 1)}))
		require.NoError(t, s.SaveTransaction(ctx, testTx(2, alice, 1), []*types.Log{testLog(approvalTopic, alice, bob, 2)}))
		require.NoError(t, s.SaveTransaction(ctx, testTx(3, bob, 0), []*types.Log{testLog(transferTopic, bob, alice, 3)}))

		all, err := s.GetLogs(ctx, LogFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, uint64(1), all[0].BlockNumber)
		assert.Equal(t, uint64(3), all[2].BlockNumber)

		transfers, err := s.GetLogs(ctx, LogFilter{Topics: [][]common.Hash{{transferTopic}}})
		require.NoError(t, err)
		require.Len(t, transfers, 2)

		fromBob, err := s.GetLogs(ctx, LogFilter{
			Addresses: []common.Address{contract},
			Topics:    [][]common.Hash{{transferTopic}, {common.BytesToHash(bob.Bytes())}},
		})
		require.NoError(t, err)
		require.Len(t, fromBob, 1)
		assert.Equal(t, byte(3), fromBob[0].Data[31])

		from, to := uint64(2), uint64(2)
		ranged, err := s.GetLogs(ctx, LogFilter{FromBlock: &from, ToBlock: &to})
		require.NoError(t, err)
		require.Len(t, ranged, 1)
		assert.Equal(t, approvalTopic, ranged[0].Topics[0])

		rangeCases := []struct {
			from, to *uint64
			want     int
		}{
			{ptr(0), ptr(2), 2},
			{ptr(3), nil, 1},
			{ptr(2), ptr(99), 2},
			{ptr(4), nil, 0},
			{nil, ptr(0), 0},
			{ptr(3), ptr(2), 0},
		}
		for _, rc := range rangeCases {
			got, err := s.GetLogs(ctx, LogFilter{FromBlock: rc.from, ToBlock: rc.to})
			require.NoError(t, err)
			assert.Len(t, got, rc.want)
		}

		none, err := s.GetLogs(ctx, LogFilter{Addresses: []common.Address{alice}})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func ptr(n uint64) *uint64 { return &n }

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return NewMemoryStore(testChainID)
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(testChainID)

	tx := testTx(1, alice, 0)
	require.NoError(t, s.SaveTransaction(ctx, tx, []*types.Log{testLog(transferTopic, alice, bob, 1)}))

	logs, err := s.GetLogsByTxHash(ctx, tx.Hash)
	require.NoError(t, err)
	logs[0].Data[31] = 99
	logs[0].Topics[0] = common.Hash{}

	again, err := s.GetLogsByTxHash(ctx, tx.Hash)
	require.NoError(t, err)
	assert.Equal(t, byte(1), again[0].Data[31])
	assert.Equal(t, transferTopic, again[0].Topics[0])
}

func TestLogFilter_Matches(t *testing.T) {
	l := testLog(transferTopic, alice, bob, 1)
	l.BlockNumber = 5

	five, six := uint64(5), uint64(6)
	tests := []struct {
		name   string
		filter LogFilter
		want   bool
	}{
		{"empty", LogFilter{}, true},
		{"in range", LogFilter{FromBlock: &five, ToBlock: &five}, true},
		{"below range", LogFilter{FromBlock: &six}, false},
		{"wildcard position", LogFilter{Topics: [][]common.Hash{{}, {common.BytesToHash(alice.Bytes())}}}, true},
		{"or set", LogFilter{Topics: [][]common.Hash{{approvalTopic, transferTopic}}}, true},
		{"topic mismatch", LogFilter{Topics: [][]common.Hash{{approvalTopic}}}, false},
		{"position past topics", LogFilter{Topics: [][]common.Hash{{}, {}, {}, {transferTopic}}}, false},
		{"other address", LogFilter{Addresses: []common.Address{bob}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(l))
		})
	}
}

func TestBlockHash_Deterministic(t *testing.T) {
	assert.Equal(t, BlockHash(1, 7), BlockHash(1, 7))
	assert.NotEqual(t, BlockHash(1, 7), BlockHash(1, 8))
	assert.NotEqual(t, BlockHash(1, 7), BlockHash(2, 7))
}
