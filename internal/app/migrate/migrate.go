package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/rodbv/clean-node-api/db"
)

const (
	dialect        = "postgres"
	commandTimeout = time.Minute
	pingTimeout    = 5 * time.Second
)

// Pool is the connection pool the runner health-checks and closes.
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// Source locates migration files. When FS is nil Dir is read from disk.
type Source struct {
	FS  fs.FS
	Dir string
}

// SourceFor reads migrations from dir on disk, or from the copies compiled
// into the binary when dir is empty.
func SourceFor(dir string) Source {
	if dir = strings.TrimSpace(dir); dir == "" {
		return Source{FS: db.Migrations, Dir: db.MigrationsDir}
	}
	return Source{Dir: dir}
}

// Runner wraps database migration capabilities.
type Runner struct {
	pool   Pool
	dsn    string
	source Source
	log    *slog.Logger
}

// New returns a migration runner backed by goose.
func New(pool Pool, dsn string, source Source, log *slog.Logger) (Runner, error) {
	if pool == nil {
		return Runner{}, errors.New("nil pool provided")
	}
	if dsn == "" {
		return Runner{}, errors.New("empty database dsn")
	}
	if source.Dir == "" {
		return Runner{}, errors.New("empty migrations directory")
	}
	if source.FS != nil {
		if _, err := fs.Stat(source.FS, source.Dir); err != nil {
			return Runner{}, fmt.Errorf("locate embedded migrations: %w", err)
		}
	} else if _, err := os.Stat(source.Dir); err != nil {
		return Runner{}, fmt.Errorf("locate migrations dir: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	return Runner{pool: pool, dsn: dsn, source: source, log: log}, nil
}

// Ensure applies pending migrations.
func (r Runner) Ensure(ctx context.Context) error {
	return r.withDB(func(conn *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()

		r.log.Info("applying migrations", "dir", r.source.Dir)
		if err := goose.UpContext(runCtx, conn, r.source.Dir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		r.log.Info("migrations applied")
		return nil
	})
}

// Status reports applied and pending migrations.
func (r Runner) Status(ctx context.Context) error {
	return r.withDB(func(conn *sql.DB) error {
		r.log.Info("migration status", "dir", r.source.Dir)
		if err := goose.StatusContext(ctx, conn, r.source.Dir); err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return nil
	})
}

// Down rolls back either the latest migration or, when targetVersion is
// positive, everything above targetVersion.
func (r Runner) Down(ctx context.Context, targetVersion int64) error {
	return r.withDB(func(conn *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()

		if targetVersion > 0 {
			r.log.Info("rolling back migrations", "target", targetVersion)
			if err := goose.DownToContext(runCtx, conn, r.source.Dir, targetVersion); err != nil {
				return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
			}
		} else {
			r.log.Info("rolling back latest migration")
			if err := goose.DownContext(runCtx, conn, r.source.Dir); err != nil {
				return fmt.Errorf("rollback latest migration: %w", err)
			}
		}

		r.log.Info("rollback complete")
		return nil
	})
}

// Ping ensures the database connection is alive.
func (r Runner) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close releases underlying connections.
func (r Runner) Close() {
	r.pool.Close()
}

func (r Runner) withDB(fn func(*sql.DB) error) error {
	goose.SetBaseFS(r.source.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}

	conn, err := sql.Open("pgx", r.dsn)
	if err != nil {
		return fmt.Errorf("open sql connection: %w", err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		return fmt.Errorf("ping sql connection: %w", err)
	}

	return fn(conn)
}
