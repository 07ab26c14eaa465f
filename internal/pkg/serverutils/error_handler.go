package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// HTTPError carries the status code a handler wants rendered.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

func BadRequest(message string) *HTTPError {
	return NewHTTPError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *HTTPError {
	return NewHTTPError(fiber.StatusUnauthorized, message)
}

func NotFound(message string) *HTTPError {
	return NewHTTPError(fiber.StatusNotFound, message)
}

// Internal hides err from the client but keeps it for logging.
func Internal(err error) *HTTPError {
	return &HTTPError{Code: fiber.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// StatusOf maps an error returned by a handler to a status code and client message.
func StatusOf(err error) (int, string) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, httpErr.Message
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

// ErrorHandlerMiddleware renders any error returned down the chain in the response envelope.
func ErrorHandlerMiddleware(onError ...func(ctx *fiber.Ctx, err error)) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := StatusOf(err)
		if code >= fiber.StatusInternalServerError {
			for _, fn := range onError {
				fn(ctx, err)
			}
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
