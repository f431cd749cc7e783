package eventstore

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/uptrace/bun"
)

// LatestBlockKey is the ledger_meta key holding the last allocated block.
const LatestBlockKey = "latest_block_number"

// TransactionDao is a data access object that maps directly to the 'ledger_transactions' table in PostgreSQL.
type TransactionDao struct {
	bun.BaseModel `bun:"table:ledger_transactions,alias:lt"`
	TxHash        []byte    `bun:"tx_hash,pk,type:bytea"`
	FromAddress   string    `bun:"from_address,notnull,type:varchar(42)"`
	ToAddress     string    `bun:"to_address,notnull,type:varchar(42)"`
	Nonce         int64     `bun:"nonce,notnull,use_zero"`
	Input         []byte    `bun:"input,type:bytea"`
	Status        int16     `bun:"status,notnull,use_zero"`
	BlockNumber   int64     `bun:"block_number,notnull,unique"`
	BlockHash     []byte    `bun:"block_hash,notnull,type:bytea"`
	TxIndex       int       `bun:"tx_index,notnull,use_zero"`
	GasUsed       int64     `bun:"gas_used,notnull,use_zero"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	RawTx         []byte    `bun:"raw_tx,nullzero,type:bytea"`
}

// LogDao is a data access object that maps directly to the 'ledger_logs' table in PostgreSQL.
type LogDao struct {
	bun.BaseModel `bun:"table:ledger_logs,alias:ll"`
	TxHash        []byte `bun:"tx_hash,pk,type:bytea"`
	LogIndex      int    `bun:"log_index,pk"`
	Address       []byte `bun:"address,notnull,type:bytea"`
	Topic0        []byte `bun:"topic0,nullzero,type:bytea"`
	Topic1        []byte `bun:"topic1,nullzero,type:bytea"`
	Topic2        []byte `bun:"topic2,nullzero,type:bytea"`
	Topic3        []byte `bun:"topic3,nullzero,type:bytea"`
	Data          []byte `bun:"data,type:bytea"`
	BlockNumber   int64  `bun:"block_number,notnull"`
	BlockHash     []byte `bun:"block_hash,notnull,type:bytea"`
	TxIndex       int    `bun:"tx_index,notnull,use_zero"`
}

// MetaDao is a data access object that maps directly to the 'ledger_meta' table in PostgreSQL.
type MetaDao struct {
	bun.BaseModel `bun:"table:ledger_meta,alias:lm"`
	Key           string `bun:"key,pk,type:varchar(128)"`
	Value         string `bun:"value,notnull,type:text"`
}

func toTransactionDao(tx *Transaction) *TransactionDao {
	return &TransactionDao{
		TxHash:      tx.Hash.Bytes(),
		FromAddress: tx.From.Hex(),
		ToAddress:   tx.To.Hex(),
		Nonce:       int64(tx.Nonce),
		Input:       tx.Input,
		Status:      int16(tx.Status),
		BlockNumber: int64(tx.BlockNumber),
		BlockHash:   tx.BlockHash.Bytes(),
		TxIndex:     int(tx.TxIndex),
		GasUsed:     int64(tx.GasUsed),
		CreatedAt:   tx.CreatedAt,
		RawTx:       tx.Raw,
	}
}

func toTransaction(dao *TransactionDao) *Transaction {
	return &Transaction{
		Hash:        common.BytesToHash(dao.TxHash),
		From:        common.HexToAddress(dao.FromAddress),
		To:          common.HexToAddress(dao.ToAddress),
		Nonce:       uint64(dao.Nonce),
		Input:       dao.Input,
		Status:      uint64(dao.Status),
		BlockNumber: uint64(dao.BlockNumber),
		BlockHash:   common.BytesToHash(dao.BlockHash),
		TxIndex:     uint(dao.TxIndex),
		GasUsed:     uint64(dao.GasUsed),
		CreatedAt:   dao.CreatedAt,
		Raw:         dao.RawTx,
	}
}

func toLogDao(l *types.Log) *LogDao {
	dao := &LogDao{
		TxHash:      l.TxHash.Bytes(),
		LogIndex:    int(l.Index),
		Address:     l.Address.Bytes(),
		Data:        l.Data,
		BlockNumber: int64(l.BlockNumber),
		BlockHash:   l.BlockHash.Bytes(),
		TxIndex:     int(l.TxIndex),
	}
	topics := []*[]byte{&dao.Topic0, &dao.Topic1, &dao.Topic2, &dao.Topic3}
	for i, t := range l.Topics {
		if i >= MaxTopics {
			break
		}
		*topics[i] = t.Bytes()
	}
	return dao
}

func toLog(dao *LogDao) *types.Log {
	l := &types.Log{
		Address:     common.BytesToAddress(dao.Address),
		Data:        dao.Data,
		BlockNumber: uint64(dao.BlockNumber),
		BlockHash:   common.BytesToHash(dao.BlockHash),
		TxHash:      common.BytesToHash(dao.TxHash),
		TxIndex:     uint(dao.TxIndex),
		Index:       uint(dao.LogIndex),
	}
	for _, t := range [][]byte{dao.Topic0, dao.Topic1, dao.Topic2, dao.Topic3} {
		if t == nil {
			break
		}
		l.Topics = append(l.Topics, common.BytesToHash(t))
	}
	return l
}
