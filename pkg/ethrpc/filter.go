package ethrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/chainsafe/erc20-ledger/pkg/eventstore"
)

// FilterQuery represents the filter for eth_getLogs. Address may be a single
// address or a list; each topic position may be null, a hash or a list.
type FilterQuery struct {
	BlockHash *common.Hash
	FromBlock *rpc.BlockNumber
	ToBlock   *rpc.BlockNumber
	Addresses []common.Address
	Topics    [][]common.Hash
}

var errBlockHashWithRange = errors.New("cannot specify both blockHash and fromBlock/toBlock")

// UnmarshalJSON implements json.Unmarshaler.
func (q *FilterQuery) UnmarshalJSON(data []byte) error {
	var raw struct {
		BlockHash *common.Hash      `json:"blockHash"`
		FromBlock *rpc.BlockNumber  `json:"fromBlock"`
		ToBlock   *rpc.BlockNumber  `json:"toBlock"`
		Address   json.RawMessage   `json:"address"`
		Topics    []json.RawMessage `json:"topics"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.BlockHash != nil && (raw.FromBlock != nil || raw.ToBlock != nil) {
		return errBlockHashWithRange
	}
	q.BlockHash = raw.BlockHash
	q.FromBlock = raw.FromBlock
	q.ToBlock = raw.ToBlock

	addresses, err := decodeOneOrMany[common.Address](raw.Address)
	if err != nil {
		return fmt.Errorf("invalid address filter: %w", err)
	}
	q.Addresses = addresses

	if len(raw.Topics) > eventstore.MaxTopics {
		return fmt.Errorf("too many topics: %d", len(raw.Topics))
	}
	q.Topics = make([][]common.Hash, len(raw.Topics))
	for i, t := range raw.Topics {
		if q.Topics[i], err = decodeOneOrMany[common.Hash](t); err != nil {
			return fmt.Errorf("invalid topic %d: %w", i, err)
		}
	}
	return nil
}

// decodeOneOrMany decodes null, a single value or a list of values.
func decodeOneOrMany[T any](data json.RawMessage) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

// resolveBlockNumber turns a block tag into a concrete number. Tags other
// than earliest resolve to latest, which is also the default.
func resolveBlockNumber(n *rpc.BlockNumber, latest uint64) uint64 {
	switch {
	case n == nil:
		return latest
	case *n == rpc.EarliestBlockNumber:
		return 0
	case *n < 0:
		return latest
	default:
		return uint64(*n)
	}
}
