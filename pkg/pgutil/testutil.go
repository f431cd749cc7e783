package pgutil

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/chainsafe/erc20-ledger/pkg/config"
)

const (
	testDatabase = "ledger_test"
	testUser     = "ledger"
	testPassword = "ledger"
)

// dockerAvailable reports whether a docker daemon answers on DOCKER_HOST or
// one of the usual unix sockets.
func dockerAvailable() bool {
	if os.Getenv("DOCKER_HOST") != "" {
		return true
	}
	for _, sock := range []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	} {
		conn, err := (&net.Dialer{Timeout: time.Second}).Dial("unix", sock)
		if err == nil {
			_ = conn.Close()
			return true
		}
	}
	return false
}

// NewTestDB starts a throwaway postgres container for t and returns an open
// connection to it. Both are released when t finishes. Tests are skipped when
// docker is not reachable.
func NewTestDB(t *testing.T) *bun.DB {
	t.Helper()
	if !dockerAvailable() {
		t.Skip("docker is not available, skipping postgres journal test")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     testUser,
		Password: testPassword,
		Database: testDatabase,
		SSLMode:  "disable",
	}

	var db *bun.DB
	require.Eventually(t, func() bool {
		db, err = ConnectDB(ctx, cfg)
		return err == nil
	}, 30*time.Second, 250*time.Millisecond, "connect to test database")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TableExists reports whether the public schema has table name.
func TableExists(t *testing.T, db bun.IDB, name string) bool {
	t.Helper()
	return exists(t, db, "SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?", name)
}

// IndexExists reports whether the public schema has index name.
func IndexExists(t *testing.T, db bun.IDB, name string) bool {
	t.Helper()
	return exists(t, db, "SELECT 1 FROM pg_indexes WHERE schemaname = 'public' AND indexname = ?", name)
}

// RowCount returns the number of rows in table.
func RowCount(t *testing.T, db bun.IDB, table string) int {
	t.Helper()
	var n int
	err := db.NewSelect().
		TableExpr("?", bun.Ident(table)).
		ColumnExpr("count(*)").
		Scan(context.Background(), &n)
	require.NoError(t, err, "count rows of %s", table)
	return n
}

func exists(t *testing.T, db bun.IDB, query string, arg string) bool {
	t.Helper()
	var ok bool
	err := db.NewSelect().ColumnExpr("EXISTS ("+query+")", arg).Scan(context.Background(), &ok)
	require.NoError(t, err)
	return ok
}
