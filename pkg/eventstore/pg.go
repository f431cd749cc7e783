package eventstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// uniqueViolation is the SQLSTATE postgres reports for a duplicate key.
const uniqueViolation = "23505"

type pgStore struct {
	db      *bun.DB
	chainID uint64
}

// NewPGStore creates a postgres implementation of the journal. The tables are
// created by the ledgerdb migrations.
func NewPGStore(db *bun.DB, chainID uint64) Store {
	return &pgStore{db: db, chainID: chainID}
}

// SaveTransaction stamps copies of tx and logs and hands the block fields back
// to the caller only once the insert has committed.
func (s *pgStore) SaveTransaction(ctx context.Context, tx *Transaction, logs []*types.Log) error {
	stampedTx := copyTransaction(tx)
	stampedLogs := make([]*types.Log, len(logs))
	for i, l := range logs {
		stampedLogs[i] = copyLog(l)
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, dbTx bun.Tx) error {
		exists, err := dbTx.NewSelect().
			Model((*TransactionDao)(nil)).
			Where("tx_hash = ?", tx.Hash.Bytes()).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check transaction exists: %w", err)
		}
		if exists {
			return ErrDuplicate
		}

		next, err := nextBlock(ctx, dbTx)
		if err != nil {
			return err
		}
		stamp(stampedTx, stampedLogs, s.chainID, next)

		if _, err = dbTx.NewInsert().Model(toTransactionDao(stampedTx)).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to save transaction: %w", err)
		}

		if len(stampedLogs) == 0 {
			return nil
		}
		daos := make([]*LogDao, len(stampedLogs))
		for i, l := range stampedLogs {
			daos[i] = toLogDao(l)
		}
		if _, err = dbTx.NewInsert().Model(&daos).Exec(ctx); err != nil {
			return fmt.Errorf("failed to save logs: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	*tx = *stampedTx
	for i, l := range stampedLogs {
		*logs[i] = *l
	}
	return nil
}

// nextBlock bumps the block counter. The counter row is seeded first so that
// concurrent writers always contend on the same row lock, which is held until
// the surrounding transaction commits.
func nextBlock(ctx context.Context, tx bun.Tx) (uint64, error) {
	_, err := tx.NewInsert().
		Model(&MetaDao{Key: LatestBlockKey, Value: "0"}).
		On("CONFLICT (key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to seed block number: %w", err)
	}

	meta := new(MetaDao)
	err = tx.NewSelect().
		Model(meta).
		Where("key = ?", LatestBlockKey).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current block number: %w", err)
	}

	current, err := strconv.ParseUint(meta.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block number: %w", err)
	}
	next := current + 1

	_, err = tx.NewUpdate().
		Model((*MetaDao)(nil)).
		Set("value = ?", strconv.FormatUint(next, 10)).
		Where("key = ?", LatestBlockKey).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to update block number: %w", err)
	}
	return next, nil
}

func (s *pgStore) GetTransaction(ctx context.Context, hash common.Hash) (*Transaction, error) {
	dao := new(TransactionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("tx_hash = ?", hash.Bytes()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return toTransaction(dao), nil
}

func (s *pgStore) GetLogsByTxHash(ctx context.Context, hash common.Hash) ([]*types.Log, error) {
	if _, err := s.GetTransaction(ctx, hash); err != nil {
		return nil, err
	}

	var daos []LogDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("tx_hash = ?", hash.Bytes()).
		Order("log_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	return toLogs(daos), nil
}

func (s *pgStore) GetLogs(ctx context.Context, filter LogFilter) ([]*types.Log, error) {
	var daos []LogDao
	query := s.db.NewSelect().Model(&daos)

	if filter.FromBlock != nil {
		query = query.Where("block_number >= ?", int64(*filter.FromBlock))
	}
	if filter.ToBlock != nil {
		query = query.Where("block_number <= ?", int64(*filter.ToBlock))
	}
	if len(filter.Addresses) > 0 {
		addrs := make([][]byte, len(filter.Addresses))
		for i, a := range filter.Addresses {
			addrs[i] = a.Bytes()
		}
		query = query.Where("address IN (?)", bun.In(addrs))
	}
	for i, set := range filter.Topics {
		if len(set) == 0 {
			continue
		}
		if i >= MaxTopics {
			// No log carries a topic at this position.
			return nil, nil
		}
		topics := make([][]byte, len(set))
		for j, h := range set {
			topics[j] = h.Bytes()
		}
		query = query.Where("? IN (?)", bun.Ident("topic"+strconv.Itoa(i)), bun.In(topics))
	}

	err := query.Order("block_number ASC", "log_index ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	return toLogs(daos), nil
}

func (s *pgStore) LatestBlockNumber(ctx context.Context) (uint64, error) {
	meta := new(MetaDao)
	err := s.db.NewSelect().
		Model(meta).
		Where("key = ?", LatestBlockKey).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	n, err := strconv.ParseUint(meta.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block number: %w", err)
	}
	return n, nil
}

func (s *pgStore) TransactionCount(ctx context.Context, from common.Address) (uint64, error) {
	count, err := s.db.NewSelect().
		Model((*TransactionDao)(nil)).
		Where("from_address = ?", from.Hex()).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction count: %w", err)
	}
	return uint64(count), nil
}

func toLogs(daos []LogDao) []*types.Log {
	logs := make([]*types.Log, len(daos))
	for i := range daos {
		logs[i] = toLog(&daos[i])
	}
	return logs
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation
}
