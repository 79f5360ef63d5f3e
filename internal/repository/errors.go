package repository

import "errors"

// ErrEmailInUse indicates an account with the same email already exists.
var ErrEmailInUse = errors.New("repository: email already in use")
