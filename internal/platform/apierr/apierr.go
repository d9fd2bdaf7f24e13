package apierr

import "fmt"

// Error is the caller-facing failure: an HTTP status, a stable code and
// optional diagnostics that are serialized verbatim.
type Error struct {
	Status  int
	Code    string
	Err     error
	Details any
	Raw     string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func (e *Error) WithRaw(raw string) *Error {
	e.Raw = raw
	return e
}
