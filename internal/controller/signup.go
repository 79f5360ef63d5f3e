package controller

import (
	"context"

	"github.com/rodbv/clean-node-api/internal/domain"
)

const (
	fieldName                 = "name"
	fieldEmail                = "email"
	fieldPassword             = "password"
	fieldPasswordConfirmation = "passwordConfirmation"
)

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

var requiredSignUpFields = []string{fieldName, fieldEmail, fieldPassword, fieldPasswordConfirmation}

// SignUpController validates sign-up requests and delegates account creation.
type SignUpController struct {
	emailValidator EmailValidator
	addAccount     domain.AddAccount
}

var _ Controller = (*SignUpController)(nil)

// NewSignUpController constructs a SignUpController.
func NewSignUpController(emailValidator EmailValidator, addAccount domain.AddAccount) *SignUpController {
	return &SignUpController{emailValidator: emailValidator, addAccount: addAccount}
}

// Handle runs the sign-up pipeline. Validation failures produce 400 responses;
// any collaborator failure, including a panic, produces a generic 500.
func (c *SignUpController) Handle(ctx context.Context, req HTTPRequest) (resp HTTPResponse) {
	defer func() {
		if recover() != nil {
			resp = InternalServerError("")
		}
	}()

	fields := make(map[string]string, len(requiredSignUpFields))
	for _, field := range requiredSignUpFields {
		raw := req.Body[field]
		if isBlank(raw) {
			return BadRequest(MissingParamError{Param: field})
		}
		value, ok := raw.(string)
		if !ok {
			return BadRequest(InvalidParamError{Param: field})
		}
		fields[field] = value
	}

	valid, err := c.emailValidator.IsValid(fields[fieldEmail])
	if err != nil {
		return InternalServerError("")
	}
	if !valid {
		return BadRequest(InvalidParamError{Param: fieldEmail})
	}

	if fields[fieldPassword] != fields[fieldPasswordConfirmation] {
		return BadRequest(InvalidParamError{Param: fieldPasswordConfirmation})
	}
	if len(fields[fieldPassword]) > maxPasswordBytes {
		return BadRequest(InvalidParamError{Param: fieldPassword})
	}

	account, err := c.addAccount.Add(ctx, domain.AddAccountInput{
		Name:     fields[fieldName],
		Email:    fields[fieldEmail],
		Password: fields[fieldPassword],
	})
	if err != nil {
		return InternalServerError("")
	}
	return Created(account)
}

// isBlank reports whether a decoded JSON value counts as not provided.
func isBlank(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case bool:
		return !value
	case float64:
		return value == 0
	case int:
		return value == 0
	default:
		return false
	}
}
