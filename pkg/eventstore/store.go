// Package eventstore is the append-only journal of ledger transactions and the
// ERC-20 logs they produced. Each saved transaction gets its own synthetic
// block, which is what the JSON-RPC facade serves back to wallets.
package eventstore

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrNotFound is returned when a transaction lookup finds no record.
	ErrNotFound = errors.New("transaction not found")
	// ErrDuplicate is returned when a transaction hash was already journaled.
	ErrDuplicate = errors.New("transaction already journaled")
)

// Transaction is a journaled ledger mutation.
type Transaction struct {
	Hash        common.Hash
	From        common.Address
	To          common.Address
	Nonce       uint64
	Input       []byte
	Status      uint64
	BlockNumber uint64
	BlockHash   common.Hash
	TxIndex     uint
	GasUsed     uint64
	CreatedAt   time.Time
	// Raw is the signed transaction envelope, when the mutation arrived as one.
	Raw []byte
}

// Store persists transactions and their logs.
type Store interface {
	// SaveTransaction assigns the next block to tx, stamps the logs with the
	// block and transaction coordinates and stores both atomically.
	SaveTransaction(ctx context.Context, tx *Transaction, logs []*types.Log) error
	GetTransaction(ctx context.Context, hash common.Hash) (*Transaction, error)
	GetLogsByTxHash(ctx context.Context, hash common.Hash) ([]*types.Log, error)
	GetLogs(ctx context.Context, filter LogFilter) ([]*types.Log, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	// TransactionCount returns how many transactions from has sent, which is
	// also the next nonce a wallet should use.
	TransactionCount(ctx context.Context, from common.Address) (uint64, error)
}

// BlockHash derives the deterministic hash of a synthetic block.
func BlockHash(chainID, blockNumber uint64) common.Hash {
	data := make([]byte, 16)
	binary.BigEndian.PutUint64(data[0:8], chainID)
	binary.BigEndian.PutUint64(data[8:16], blockNumber)
	return sha256.Sum256(data)
}

// stamp fills in the block coordinates of tx and its logs.
func stamp(tx *Transaction, logs []*types.Log, chainID, blockNumber uint64) {
	tx.BlockNumber = blockNumber
	tx.BlockHash = BlockHash(chainID, blockNumber)
	tx.TxIndex = 0
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	for i, l := range logs {
		l.BlockNumber = tx.BlockNumber
		l.BlockHash = tx.BlockHash
		l.TxHash = tx.Hash
		l.TxIndex = tx.TxIndex
		l.Index = uint(i)
		l.Removed = false
	}
}

func copyLog(l *types.Log) *types.Log {
	cp := *l
	cp.Topics = append([]common.Hash(nil), l.Topics...)
	cp.Data = common.CopyBytes(l.Data)
	return &cp
}

func copyTransaction(tx *Transaction) *Transaction {
	cp := *tx
	cp.Input = common.CopyBytes(tx.Input)
	cp.Raw = common.CopyBytes(tx.Raw)
	return &cp
}
