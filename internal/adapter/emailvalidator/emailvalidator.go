// Package emailvalidator checks email address format.
package emailvalidator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Adapter satisfies controller.EmailValidator using go-playground/validator.
type Adapter struct {
	validate *validator.Validate
}

// New returns an Adapter.
func New() Adapter {
	return Adapter{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// IsValid reports whether email is a well-formed address. Errors are reserved
// for validator misuse, not for malformed input.
func (a Adapter) IsValid(email string) (bool, error) {
	err := a.validate.Var(email, "required,email")
	if err == nil {
		return true, nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return false, nil
	}
	return false, err
}
