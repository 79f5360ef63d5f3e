package controller

import "net/http"

// OK wraps body in a 200 response.
func OK(body any) HTTPResponse {
	return HTTPResponse{StatusCode: http.StatusOK, Body: body}
}

// Created wraps body in a 201 response.
func Created(body any) HTTPResponse {
	return HTTPResponse{StatusCode: http.StatusCreated, Body: body}
}

// BadRequest wraps err in a 400 response.
func BadRequest(err error) HTTPResponse {
	return HTTPResponse{StatusCode: http.StatusBadRequest, Body: err}
}

// InternalServerError builds a 500 response. An empty message falls back to
// the generic one.
func InternalServerError(message string) HTTPResponse {
	if message == "" {
		message = defaultServerErrorMessage
	}
	return HTTPResponse{StatusCode: http.StatusInternalServerError, Body: &ServerError{Message: message}}
}
