// Package ledgerdb holds all the migrations for the ledger journal database
package ledgerdb

import (
	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/erc20-ledger/pkg/eventstore"
	mghelper "github.com/chainsafe/erc20-ledger/pkg/pgutil/migrations"
)

// Migrations is the collection of all migrations for the ledger journal database
var Migrations = migrate.NewMigrations()

var (
	transactionsTable = mghelper.Table{
		Model:   &eventstore.TransactionDao{},
		Indexes: []string{"from_address"},
	}
	// eth_getLogs filters by block range, event signature and indexed address.
	logsTable = mghelper.Table{
		Model:   &eventstore.LogDao{},
		Indexes: []string{"block_number", "topic0", "topic1", "topic2"},
	}
	metaTable = mghelper.Table{
		Model: &eventstore.MetaDao{},
		Seed:  []any{&eventstore.MetaDao{Key: eventstore.LatestBlockKey, Value: "0"}},
	}
)
