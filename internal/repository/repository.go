package repository

import (
	"context"

	"github.com/rodbv/clean-node-api/internal/domain"
)

// AccountRepository persists accounts.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
}
