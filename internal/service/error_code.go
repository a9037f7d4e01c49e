package service

// ErrorBadRequest is returned when the input of a flow is unusable. Nothing remote has been touched when it is returned.
type ErrorBadRequest struct {
	errMsg string
}

func (e *ErrorBadRequest) Error() string {
	return e.errMsg
}
