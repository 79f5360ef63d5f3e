package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodbv/clean-node-api/internal/domain"
)

type emailValidatorMock struct {
	isValidFunc func(email string) (bool, error)
	calls       []string
}

func (m *emailValidatorMock) IsValid(email string) (bool, error) {
	m.calls = append(m.calls, email)
	if m.isValidFunc != nil {
		return m.isValidFunc(email)
	}
	return true, nil
}

type addAccountMock struct {
	addFunc func(ctx context.Context, input domain.AddAccountInput) (*domain.Account, error)
	calls   []domain.AddAccountInput
}

func (m *addAccountMock) Add(ctx context.Context, input domain.AddAccountInput) (*domain.Account, error) {
	m.calls = append(m.calls, input)
	if m.addFunc != nil {
		return m.addFunc(ctx, input)
	}
	return &domain.Account{ID: "valid_id", Name: input.Name, Email: input.Email}, nil
}

type signUpFixture struct {
	sut        *SignUpController
	validator  *emailValidatorMock
	addAccount *addAccountMock
}

func newSignUpFixture() signUpFixture {
	validator := &emailValidatorMock{}
	addAccount := &addAccountMock{}
	return signUpFixture{
		sut:        NewSignUpController(validator, addAccount),
		validator:  validator,
		addAccount: addAccount,
	}
}

func validPayload() map[string]any {
	return map[string]any{
		"name":                 "any-name",
		"email":                "any-email@email.com",
		"password":             "any-password",
		"passwordConfirmation": "any-password",
	}
}

func TestSignUpReturnsBadRequestForEachMissingField(t *testing.T) {
	for _, field := range []string{"name", "email", "password", "passwordConfirmation"} {
		t.Run(field, func(t *testing.T) {
			f := newSignUpFixture()
			body := validPayload()
			delete(body, field)

			resp := f.sut.Handle(context.Background(), HTTPRequest{Body: body})

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, MissingParamError{Param: field}, resp.Body)
			assert.Empty(t, f.addAccount.calls)
		})
	}
}

func TestSignUpTreatsFalsyValuesAsMissing(t *testing.T) {
	cases := map[string]any{
		"empty string": "",
		"nil":          nil,
		"false":        false,
		"zero":         float64(0),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			f := newSignUpFixture()
			body := validPayload()
			body["password"] = value

			resp := f.sut.Handle(context.Background(), HTTPRequest{Body: body})

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.EqualError(t, resp.Body.(error), "missing param: password")
		})
	}
}

func TestSignUpReportsFirstMissingFieldInOrder(t *testing.T) {
	f := newSignUpFixture()

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: map[string]any{"password": "x"}})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, MissingParamError{Param: "name"}, resp.Body)
}

func TestSignUpRejectsNonStringValue(t *testing.T) {
	f := newSignUpFixture()
	body := validPayload()
	body["name"] = float64(42)

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: body})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, InvalidParamError{Param: "name"}, resp.Body)
}

func TestSignUpRejectsPasswordConfirmationMismatch(t *testing.T) {
	f := newSignUpFixture()
	body := map[string]any{
		"name":                 "a",
		"email":                "a@a.com",
		"password":             "x",
		"passwordConfirmation": "y",
	}

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: body})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.EqualError(t, resp.Body.(error), "invalid param: passwordConfirmation")
	assert.Empty(t, f.addAccount.calls)
}

func TestSignUpRejectsPasswordLongerThan72Bytes(t *testing.T) {
	f := newSignUpFixture()
	body := validPayload()
	body["password"] = strings.Repeat("p", 73)
	body["passwordConfirmation"] = strings.Repeat("p", 73)

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: body})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.EqualError(t, resp.Body.(error), "invalid param: password")
	assert.Empty(t, f.addAccount.calls)
}

func TestSignUpAcceptsPasswordOf72Bytes(t *testing.T) {
	f := newSignUpFixture()
	body := validPayload()
	body["password"] = strings.Repeat("p", 72)
	body["passwordConfirmation"] = strings.Repeat("p", 72)

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: body})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, f.addAccount.calls, 1)
}

func TestSignUpRejectsInvalidEmail(t *testing.T) {
	f := newSignUpFixture()
	f.validator.isValidFunc = func(string) (bool, error) { return false, nil }
	body := validPayload()
	body["email"] = "invalid"

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: body})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.EqualError(t, resp.Body.(error), "invalid param: email")
	assert.Equal(t, []string{"invalid"}, f.validator.calls)
}

func TestSignUpChecksEmailBeforePasswordConfirmation(t *testing.T) {
	f := newSignUpFixture()
	f.validator.isValidFunc = func(string) (bool, error) { return false, nil }
	body := validPayload()
	body["passwordConfirmation"] = "different"

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: body})

	assert.Equal(t, InvalidParamError{Param: "email"}, resp.Body)
}

func TestSignUpReturnsServerErrorWhenEmailValidatorFails(t *testing.T) {
	f := newSignUpFixture()
	f.validator.isValidFunc = func(string) (bool, error) { return false, errors.New("validator exploded") }

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: validPayload()})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.EqualError(t, resp.Body.(error), "internal server error")
}

func TestSignUpRecoversFromEmailValidatorPanic(t *testing.T) {
	f := newSignUpFixture()
	f.validator.isValidFunc = func(string) (bool, error) { panic("boom") }

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: validPayload()})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.EqualError(t, resp.Body.(error), "internal server error")
}

func TestSignUpCreatesAccount(t *testing.T) {
	f := newSignUpFixture()
	body := validPayload()

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: body})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	account, ok := resp.Body.(*domain.Account)
	require.True(t, ok, "expected *domain.Account body, got %T", resp.Body)
	assert.Equal(t, &domain.Account{ID: "valid_id", Name: "any-name", Email: "any-email@email.com"}, account)

	require.Len(t, f.addAccount.calls, 1)
	assert.Equal(t, domain.AddAccountInput{
		Name:     "any-name",
		Email:    "any-email@email.com",
		Password: "any-password",
	}, f.addAccount.calls[0])
}

func TestSignUpReturnsServerErrorWhenAddAccountFails(t *testing.T) {
	f := newSignUpFixture()
	f.addAccount.addFunc = func(context.Context, domain.AddAccountInput) (*domain.Account, error) {
		return nil, errors.New("pq: connection refused")
	}

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: validPayload()})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.EqualError(t, resp.Body.(error), "internal server error")
	assert.NotContains(t, resp.Body.(error).Error(), "connection refused")
}

func TestSignUpRecoversFromAddAccountPanic(t *testing.T) {
	f := newSignUpFixture()
	f.addAccount.addFunc = func(context.Context, domain.AddAccountInput) (*domain.Account, error) {
		panic("boom")
	}

	resp := f.sut.Handle(context.Background(), HTTPRequest{Body: validPayload()})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSignUpPassesContextToAddAccount(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "request-1")
	f := newSignUpFixture()
	var seen any
	f.addAccount.addFunc = func(ctx context.Context, input domain.AddAccountInput) (*domain.Account, error) {
		seen = ctx.Value(ctxKey{})
		return &domain.Account{ID: "valid_id"}, nil
	}

	f.sut.Handle(ctx, HTTPRequest{Body: validPayload()})

	assert.Equal(t, "request-1", seen)
}
