package domain

import (
	"context"
	"time"
)

// Account represents a registered user account.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// AddAccountInput carries the fields needed to register an account.
type AddAccountInput struct {
	Name     string
	Email    string
	Password string
}

// AddAccount registers a new account.
type AddAccount interface {
	Add(ctx context.Context, input AddAccountInput) (*Account, error)
}
