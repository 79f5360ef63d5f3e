package account

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/rodbv/clean-node-api/internal/domain"
	"github.com/rodbv/clean-node-api/internal/repository"
)

// Encrypter turns a plaintext secret into its stored form.
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
}

// Service registers accounts: it hashes the password, assigns an identifier
// and persists the result.
type Service struct {
	repo      repository.AccountRepository
	encrypter Encrypter
	logger    *slog.Logger
}

var _ domain.AddAccount = Service{}

// New constructs a Service.
func New(repo repository.AccountRepository, encrypter Encrypter, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return Service{repo: repo, encrypter: encrypter, logger: logger}
}

// Add registers a new account. Input is not validated here.
func (s Service) Add(ctx context.Context, input domain.AddAccountInput) (*domain.Account, error) {
	hashed, err := s.encrypter.Encrypt(input.Password)
	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}
	account := &domain.Account{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  hashed,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	s.logger.Info("account created", "account_id", account.ID)
	return account, nil
}
