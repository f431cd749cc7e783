// Package migrations holds the helpers the journal migrations and the
// migrate command are built from.
package migrations

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const usageText = `Usage:
  erc20d-migrate -config <file> <command>

Manages the ledger journal schema. Commands:
  init    create the bun migration bookkeeping tables
  up      apply every pending migration
  down    roll back the most recent migration group
  status  list applied and pending migrations

Example:
  go run ./cmd/erc20d/migrate -config config.yaml up
`

// Usage prints the command help and exits with status 2.
func Usage() {
	fmt.Fprint(os.Stderr, usageText)
	flag.PrintDefaults()
	os.Exit(2)
}

// Exitf reports a failure followed by the command help.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "migrate: "+format+"\n", args...)
	Usage()
}

// Table describes one journal table: its bun model, the columns that get a
// secondary index and rows seeded on creation.
type Table struct {
	Model   any
	Indexes []string
	Seed    []any
}

// CreateTable creates t if missing, then its indexes, then inserts the seed
// rows that are not present yet. It is safe to run twice.
func CreateTable(ctx context.Context, db bun.IDB, t Table) error {
	name, err := tableName(db, t.Model)
	if err != nil {
		return err
	}
	log.Printf("creating table %s", name)

	if _, err := db.NewCreateTable().Model(t.Model).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	for _, column := range t.Indexes {
		if _, err := db.NewCreateIndex().
			Model(t.Model).
			Index(indexName(name, column)).
			Column(column).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("index %s(%s): %w", name, column, err)
		}
	}
	for _, row := range t.Seed {
		if _, err := db.NewInsert().Model(row).Ignore().Exec(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return nil
}

// DropTable drops t together with its indexes.
func DropTable(ctx context.Context, db bun.IDB, t Table) error {
	name, err := tableName(db, t.Model)
	if err != nil {
		return err
	}
	log.Printf("dropping table %s", name)

	if _, err := db.NewDropTable().Model(t.Model).IfExists().Cascade().Exec(ctx); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	return nil
}

// DropIndex removes the secondary index CreateTable made for column.
func DropIndex(ctx context.Context, db bun.IDB, model any, column string) error {
	name, err := tableName(db, model)
	if err != nil {
		return err
	}
	_, err = db.NewDropIndex().Model(model).Index(indexName(name, column)).IfExists().Exec(ctx)
	return err
}

func tableName(db bun.IDB, model any) (string, error) {
	if model == nil {
		return "", fmt.Errorf("table model is nil")
	}
	name := db.NewCreateTable().Model(model).GetTableName()
	if name == "" {
		return "", fmt.Errorf("no table name for model %T", model)
	}
	return strings.NewReplacer(`"`, "", ".", "_").Replace(name), nil
}

func indexName(table, column string) string {
	return "idx_" + table + "_" + column
}

type command func(ctx context.Context, m *migrate.Migrator) error

var commands = map[string]command{
	"init": func(ctx context.Context, m *migrate.Migrator) error {
		if err := m.Init(ctx); err != nil {
			return err
		}
		log.Println("migration tables ready")
		return nil
	},
	"up": locked(func(ctx context.Context, m *migrate.Migrator) error {
		group, err := m.Migrate(ctx)
		if err != nil {
			return err
		}
		if group.IsZero() {
			log.Println("journal schema is up to date")
			return nil
		}
		log.Printf("applied %s", group)
		return nil
	}),
	"down": locked(func(ctx context.Context, m *migrate.Migrator) error {
		group, err := m.Rollback(ctx)
		if err != nil {
			return err
		}
		if group.IsZero() {
			log.Println("nothing to roll back")
			return nil
		}
		log.Printf("rolled back %s", group)
		return nil
	}),
	"status": func(ctx context.Context, m *migrate.Migrator) error {
		ms, err := m.MigrationsWithStatus(ctx)
		if err != nil {
			return err
		}
		log.Printf("applied: %s", ms.Applied())
		log.Printf("pending: %s", ms.Unapplied())
		log.Printf("last group: %s", ms.LastGroup())
		return nil
	},
}

// locked holds the bun migration lock while fn runs so two migrate
// processes cannot interleave.
func locked(fn command) command {
	return func(ctx context.Context, m *migrate.Migrator) (err error) {
		if err := m.Lock(ctx); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		defer func() {
			if uerr := m.Unlock(ctx); uerr != nil && err == nil {
				err = fmt.Errorf("release migration lock: %w", uerr)
			}
		}()
		return fn(ctx, m)
	}
}

// RunMigrations runs the command named by args[0].
func RunMigrations(ctx context.Context, migrator *migrate.Migrator, args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given, expected one of %s", strings.Join(commandNames(), ", "))
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd(ctx, migrator)
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
