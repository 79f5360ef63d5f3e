package migrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodbv/clean-node-api/db"
)

type poolStub struct {
	pingErr error
	closed  bool
}

func (p *poolStub) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected ping deadline")
	}
	return p.pingErr
}

func (p *poolStub) Close() { p.closed = true }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func embedded() Source {
	return Source{FS: db.Migrations, Dir: db.MigrationsDir}
}

func TestNewValidatesArguments(t *testing.T) {
	tests := []struct {
		name   string
		pool   Pool
		dsn    string
		source Source
		errMsg string
	}{
		{name: "nil pool", dsn: "postgres://x", source: embedded(), errMsg: "nil pool provided"},
		{name: "empty dsn", pool: &poolStub{}, source: embedded(), errMsg: "empty database dsn"},
		{name: "empty dir", pool: &poolStub{}, dsn: "postgres://x", source: Source{FS: db.Migrations}, errMsg: "empty migrations directory"},
		{name: "missing embedded dir", pool: &poolStub{}, dsn: "postgres://x", source: Source{FS: fstest.MapFS{}, Dir: "nope"}, errMsg: "locate embedded migrations"},
		{name: "missing disk dir", pool: &poolStub{}, dsn: "postgres://x", source: Source{Dir: "/definitely/not/here"}, errMsg: "locate migrations dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.pool, tt.dsn, tt.source, quietLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewAcceptsEmbeddedMigrations(t *testing.T) {
	_, err := New(&poolStub{}, "postgres://x", embedded(), nil)

	assert.NoError(t, err)
}

func TestSourceFor(t *testing.T) {
	embeddedSource := SourceFor("  ")
	assert.Equal(t, db.MigrationsDir, embeddedSource.Dir)
	assert.NotNil(t, embeddedSource.FS)

	assert.Equal(t, Source{Dir: "./db/migrations"}, SourceFor("./db/migrations"))
}

func TestEmbeddedMigrationsContainAccountsTable(t *testing.T) {
	data, err := db.Migrations.ReadFile("migrations/00001_create_accounts.sql")
	require.NoError(t, err)

	assert.Contains(t, string(data), "-- +goose Up")
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS accounts")
	assert.Contains(t, string(data), "-- +goose Down")
}

func TestPingWrapsPoolError(t *testing.T) {
	pool := &poolStub{pingErr: errors.New("refused")}
	runner, err := New(pool, "postgres://x", embedded(), quietLogger())
	require.NoError(t, err)

	err = runner.Ping(context.Background())

	assert.EqualError(t, err, "ping database: refused")
}

func TestCloseClosesPool(t *testing.T) {
	pool := &poolStub{}
	runner, err := New(pool, "postgres://x", embedded(), quietLogger())
	require.NoError(t, err)

	runner.Close()

	assert.True(t, pool.closed)
}
