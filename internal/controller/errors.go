package controller

// MissingParamError reports a required field that was absent or empty.
type MissingParamError struct {
	Param string
}

func (e MissingParamError) Error() string {
	return "missing param: " + e.Param
}

// InvalidParamError reports a field whose value was rejected.
type InvalidParamError struct {
	Param string
}

func (e InvalidParamError) Error() string {
	return "invalid param: " + e.Param
}

const defaultServerErrorMessage = "internal server error"

// ServerError is the body of every 500 response. It never carries the
// underlying cause.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return defaultServerErrorMessage
	}
	return e.Message
}
