package user

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is the repository-level sentinel for a missing row.
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken is returned by repositories when the email unique constraint
// fires. The pre-check in the service is best-effort only; a concurrent create
// on the same email is caught here.
var ErrEmailTaken = errors.New("email already in use")

type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
)

// Error is the tagged outcome for every rejected lifecycle operation. Callers
// branch on Kind, not on concrete types.
type Error struct {
	Kind     ErrorKind
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *Error) Status() int {
	if e.Kind == KindNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (e *Error) Label() string {
	if e.Kind == KindNotFound {
		return "Not Found"
	}
	return "Bad Request"
}

func NewValidation(messages ...string) *Error {
	return &Error{Kind: KindValidation, Messages: messages}
}

func NewNotFound(messages ...string) *Error {
	return &Error{Kind: KindNotFound, Messages: messages}
}

// Canonical rejection messages. The duplicate-email one deliberately withholds
// the reason to resist account enumeration.
var (
	ErrPasswordMismatch = NewValidation("Passwords must match")
	ErrDuplicateEmail   = NewValidation("Invalid credentials")
	ErrSamePassword     = NewValidation("The current and new password cannot be the same")
	ErrWrongPassword    = NewValidation("Current password is incorrect")
	ErrNoRecords        = NewNotFound("No records found")
)

func NotFoundByID(id int64) *Error {
	return NewNotFound(fmt.Sprintf("User with id %d not found", id))
}
