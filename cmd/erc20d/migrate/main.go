// Command migrate manages the schema of the postgres ledger journal.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/erc20-ledger/pkg/config"
	"github.com/chainsafe/erc20-ledger/pkg/migrations/ledgerdb"
	"github.com/chainsafe/erc20-ledger/pkg/pgutil"
	mghelper "github.com/chainsafe/erc20-ledger/pkg/pgutil/migrations"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Usage = mghelper.Usage
	flag.Parse()
	if flag.NArg() != 1 {
		mghelper.Exitf("expected exactly one command, got %d", flag.NArg())
	}

	if err := run(*configPath, flag.Arg(0)); err != nil {
		mghelper.Exitf("%s: %v", flag.Arg(0), err)
	}
}

func run(configPath, command string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Journal.Driver != config.JournalPostgres {
		log.Printf("journal.driver is %q, the server will not use this database", cfg.Journal.Driver)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pgutil.ConnectDB(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Printf("running %s on %s", command, cfg.Database.Database)
	return mghelper.RunMigrations(ctx, migrate.NewMigrator(db, ledgerdb.Migrations), command)
}
