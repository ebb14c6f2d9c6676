package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ErrEmptyCode is returned by Lookup when no short code is given. No request is sent.
var ErrEmptyCode = errors.New("short code is empty")

const (
	msgUnreachable     = "failed to reach shortener service"
	msgInvalidResponse = "invalid response from shortener service"
)

// Error is the single error kind returned by Client.
// Status is zero when the request never produced an HTTP response.
type Error struct {
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}

	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MessageOf returns the user-facing message carried by err.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return err.Error()
}

func transportError(err error) *Error {
	return &Error{Message: msgUnreachable, Err: err}
}

func unexpectedStatus(status int) *Error {
	text := http.StatusText(status)
	if text == "" {
		text = strconv.Itoa(status)
	}

	return &Error{
		Message: "unexpected response: " + text,
		Status:  status,
	}
}
