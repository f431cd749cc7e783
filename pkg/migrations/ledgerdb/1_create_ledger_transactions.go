package ledgerdb

import (
	"context"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/erc20-ledger/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return mghelper.CreateTable(ctx, db, transactionsTable)
	}, func(ctx context.Context, db *bun.DB) error {
		return mghelper.DropTable(ctx, db, transactionsTable)
	})
}
