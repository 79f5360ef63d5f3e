package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rodbv/clean-node-api/internal/domain"
	"github.com/rodbv/clean-node-api/internal/repository"
)

const uniqueViolation = "23505"

// dbtx is the subset of *pgxpool.Pool the repository relies on.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool dbtx
}

// New constructs a Repository. pool is normally a *pgxpool.Pool.
func New(pool dbtx) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var _ repository.AccountRepository = (*Repository)(nil)

// CreateAccount inserts an account. A duplicate email yields repository.ErrEmailInUse.
func (r *Repository) CreateAccount(ctx context.Context, account *domain.Account) error {
	const query = `INSERT INTO accounts (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, account.ID, account.Name, account.Email, account.Password, account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrEmailInUse
		}
		return err
	}
	return nil
}
