package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind is the stable machine-readable classification of a business error.
type Kind string

const (
	KindInvalidCredentials Kind = "invalid_credentials"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindValidation         Kind = "validation"
	KindInvalidState       Kind = "invalid_state_transition"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindConflict           Kind = "conflict"
)

// Error is the single error type every business-rule violation is returned
// as. Anything that is not an *Error surfaces as a 500.
type Error struct {
	Kind    Kind
	Message string
	// StockItemID identifies the offending item for insufficient_stock.
	StockItemID uint
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidCredentials deliberately carries a single message for both unknown
// email and wrong password.
func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "Invalid email or password")
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func NotFound(entity string) *Error {
	return Newf(KindNotFound, "%s not found", entity)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func InvalidState(message string) *Error {
	return New(KindInvalidState, message)
}

func InsufficientStock(stockItemID uint) *Error {
	return &Error{
		Kind:        KindInsufficientStock,
		Message:     fmt.Sprintf("Insufficient stock for item %d", stockItemID),
		StockItemID: stockItemID,
	}
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// HTTPStatus maps a kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidCredentials:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation:
		return fiber.StatusBadRequest
	case KindInvalidState, KindInsufficientStock, KindConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// AsError unwraps err into an *Error when possible.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
