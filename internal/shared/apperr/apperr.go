package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies business failures so handlers can map them to HTTP
// statuses without string matching.
type Kind int

const (
	NotFound Kind = iota + 1
	InvalidState
	ProfileIncomplete
	InvalidArgument
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

func IsNotFound(err error) bool          { return KindOf(err) == NotFound }
func IsInvalidState(err error) bool      { return KindOf(err) == InvalidState }
func IsProfileIncomplete(err error) bool { return KindOf(err) == ProfileIncomplete }
func IsInvalidArgument(err error) bool   { return KindOf(err) == InvalidArgument }

// Status maps an error to the HTTP status handlers should return.
func Status(err error) int {
	switch KindOf(err) {
	case NotFound:
		return fiber.StatusNotFound
	case InvalidState:
		return fiber.StatusConflict
	case ProfileIncomplete:
		return fiber.StatusUnprocessableEntity
	case InvalidArgument:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
