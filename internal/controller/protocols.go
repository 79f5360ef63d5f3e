// Package controller maps transport-level requests onto use cases and back
// onto transport-level responses.
package controller

import "context"

// HTTPRequest carries the decoded request body keyed by field name.
type HTTPRequest struct {
	Body map[string]any
}

// HTTPResponse is the envelope returned by a Controller.
type HTTPResponse struct {
	StatusCode int
	Body       any
}

// Controller handles a single request.
type Controller interface {
	Handle(ctx context.Context, req HTTPRequest) HTTPResponse
}

// EmailValidator reports whether an email address is well formed.
type EmailValidator interface {
	IsValid(email string) (bool, error)
}
