package ethrpc

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/erc20-ledger/pkg/token"
)

func TestFilterQuery_UnmarshalJSON(t *testing.T) {
	t.Run("single address and mixed topics", func(t *testing.T) {
		var q FilterQuery
		err := json.Unmarshal([]byte(`{
			"fromBlock": "0x1",
			"toBlock": "latest",
			"address": "0x00000000000000000000000000000000000e2c20",
			"topics": ["`+token.TransferTopic.Hex()+`", null, ["`+common.HexToHash("0x1").Hex()+`", "`+common.HexToHash("0x2").Hex()+`"]]
		}`), &q)
		require.NoError(t, err)

		require.NotNil(t, q.FromBlock)
		assert.Equal(t, rpc.BlockNumber(1), *q.FromBlock)
		assert.Equal(t, rpc.LatestBlockNumber, *q.ToBlock)
		assert.Equal(t, []common.Address{tokenAddress}, q.Addresses)
		require.Len(t, q.Topics, 3)
		assert.Equal(t, []common.Hash{token.TransferTopic}, q.Topics[0])
		assert.Nil(t, q.Topics[1])
		assert.Len(t, q.Topics[2], 2)
	})

	t.Run("address list", func(t *testing.T) {
		var q FilterQuery
		err := json.Unmarshal([]byte(`{"address": ["0x00000000000000000000000000000000000e2c20", "0x0000000000000000000000000000000000000001"]}`), &q)
		require.NoError(t, err)
		assert.Len(t, q.Addresses, 2)
		assert.Nil(t, q.FromBlock)
	})

	t.Run("block hash with range", func(t *testing.T) {
		var q FilterQuery
		err := json.Unmarshal([]byte(`{"blockHash": "`+common.HexToHash("0x1").Hex()+`", "fromBlock": "0x1"}`), &q)
		assert.ErrorIs(t, err, errBlockHashWithRange)
	})

	t.Run("too many topics", func(t *testing.T) {
		var q FilterQuery
		err := json.Unmarshal([]byte(`{"topics": [null, null, null, null, null]}`), &q)
		assert.ErrorContains(t, err, "too many topics")
	})

	t.Run("invalid address", func(t *testing.T) {
		var q FilterQuery
		err := json.Unmarshal([]byte(`{"address": 42}`), &q)
		assert.ErrorContains(t, err, "invalid address filter")
	})
}

func TestResolveBlockNumber(t *testing.T) {
	num := func(n rpc.BlockNumber) *rpc.BlockNumber { return &n }

	assert.Equal(t, uint64(7), resolveBlockNumber(nil, 7))
	assert.Equal(t, uint64(0), resolveBlockNumber(num(rpc.EarliestBlockNumber), 7))
	assert.Equal(t, uint64(7), resolveBlockNumber(num(rpc.LatestBlockNumber), 7))
	assert.Equal(t, uint64(7), resolveBlockNumber(num(rpc.PendingBlockNumber), 7))
	assert.Equal(t, uint64(7), resolveBlockNumber(num(rpc.FinalizedBlockNumber), 7))
	assert.Equal(t, uint64(3), resolveBlockNumber(num(3), 7))
}

func TestRevert(t *testing.T) {
	err := revert("insufficient balance")
	rpcErr, ok := err.(*rpcError)
	require.True(t, ok)
	assert.Equal(t, errCodeReverted, rpcErr.ErrorCode())
	assert.Equal(t, "execution reverted: insufficient balance", rpcErr.Error())
	data, ok := rpcErr.ErrorData().(string)
	require.True(t, ok)
	assert.Equal(t, "0x08c379a0", data[:10])
}
