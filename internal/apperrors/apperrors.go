// Package apperrors defines the error kinds the service distinguishes and
// the single terminal stage that formats every handler failure into the
// client-facing {"error": message} shape.
package apperrors

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error into the HTTP status family it maps to.
type Kind int

const (
	KindValidation Kind = iota // bad or missing input -> 400
	KindAuth                   // missing, invalid or mismatched credential -> 401
	KindNotFound               // referenced resource absent -> 404
	KindStore                  // underlying database failure -> 500
)

// Error carries a user-visible message, a kind and an optional wrapped cause.
// The cause is for server-side logs only and never reaches the client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports bad or missing input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Auth reports a missing, invalid or mismatched credential.
func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

// NotFound reports an absent resource.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Store wraps an underlying database failure. The cause is kept for logging;
// the client only ever sees the generic message.
func Store(err error) *Error {
	return &Error{Kind: KindStore, Message: "Internal Server Error", Err: err}
}

// Is reports whether err is an apperrors.Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Status returns the HTTP status code err maps to. Unclassified errors
// default to 500.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindValidation:
			return fiber.StatusBadRequest
		case KindAuth:
			return fiber.StatusUnauthorized
		case KindNotFound:
			return fiber.StatusNotFound
		}
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler is the terminal formatting stage. Handlers return errors
// instead of writing responses for failures; Fiber funnels them all here.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := Status(err)
	message := "Internal Server Error"

	var appErr *Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		message = appErr.Message
		if appErr.Err != nil {
			log.Printf("%s %s: %v", c.Method(), c.Path(), appErr.Err)
		}
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		message = fiberErr.Message
	default:
		log.Printf("%s %s: unhandled error: %v", c.Method(), c.Path(), err)
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
