package api

import (
	"errors"
	"strings"
)

// CodeEmailNotConfirmed is the error code a backend may send when login is
// refused because the address was never confirmed.
const CodeEmailNotConfirmed = "email_not_confirmed"

// Error is the single failure shape of the gateway. Status is 0 when the
// request never got a response.
type Error struct {
	Status  int
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

// Message returns the user facing text of err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Status returns the HTTP status of err, or 0.
func Status(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsEmailUnconfirmed reports whether err means the account's email is not
// yet confirmed. Backends without error codes are matched on the message.
func IsEmailUnconfirmed(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code != "" {
		return apiErr.Code == CodeEmailNotConfirmed
	}
	return strings.Contains(apiErr.Message, "email")
}
