package eventstore

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type memoryStore struct {
	chainID uint64

	mu     sync.RWMutex
	latest uint64
	txs    map[common.Hash]*Transaction
	logs   map[common.Hash][]*types.Log
	order  []common.Hash
	counts map[common.Address]uint64
}

// NewMemoryStore creates a journal that lives in process memory.
func NewMemoryStore(chainID uint64) Store {
	return &memoryStore{
		chainID: chainID,
		txs:     make(map[common.Hash]*Transaction),
		logs:    make(map[common.Hash][]*types.Log),
		counts:  make(map[common.Address]uint64),
	}
}

func (s *memoryStore) SaveTransaction(_ context.Context, tx *Transaction, logs []*types.Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txs[tx.Hash]; ok {
		return ErrDuplicate
	}

	s.latest++
	stamp(tx, logs, s.chainID, s.latest)

	stored := make([]*types.Log, len(logs))
	for i, l := range logs {
		stored[i] = copyLog(l)
	}
	s.txs[tx.Hash] = copyTransaction(tx)
	s.logs[tx.Hash] = stored
	s.order = append(s.order, tx.Hash)
	s.counts[tx.From]++
	return nil
}

func (s *memoryStore) GetTransaction(_ context.Context, hash common.Hash) (*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return copyTransaction(tx), nil
}

func (s *memoryStore) GetLogsByTxHash(_ context.Context, hash common.Hash) ([]*types.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.txs[hash]; !ok {
		return nil, ErrNotFound
	}
	out := make([]*types.Log, len(s.logs[hash]))
	for i, l := range s.logs[hash] {
		out[i] = copyLog(l)
	}
	return out, nil
}

func (s *memoryStore) GetLogs(_ context.Context, filter LogFilter) ([]*types.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// order[i] is the transaction of block i+1, so the block range bounds the scan.
	lo, hi := uint64(0), uint64(len(s.order))
	if filter.FromBlock != nil && *filter.FromBlock > 1 {
		lo = min(*filter.FromBlock-1, hi)
	}
	if filter.ToBlock != nil && *filter.ToBlock < hi {
		hi = *filter.ToBlock
	}
	if lo >= hi {
		return nil, nil
	}

	var out []*types.Log
	for _, hash := range s.order[lo:hi] {
		for _, l := range s.logs[hash] {
			if filter.Matches(l) {
				out = append(out, copyLog(l))
			}
		}
	}
	return out, nil
}

func (s *memoryStore) LatestBlockNumber(context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, nil
}

func (s *memoryStore) TransactionCount(_ context.Context, from common.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[from], nil
}
