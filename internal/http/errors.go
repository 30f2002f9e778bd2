package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"prodcatalog/internal/domain"
	applog "prodcatalog/internal/log"
	"prodcatalog/internal/validate"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorHandler turns handler errors into the JSON error envelope. Server
// side failures are logged in full and answered with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var verr *validate.Error
	var ferr *fiber.Error

	switch {
	case errors.As(err, &verr):
		applog.Warn(c, "validation.fail", map[string]any{"fields": verr.Fields})
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), verr.Fields)
	case errors.Is(err, domain.ErrValidation):
		applog.Warn(c, "validation.fail", map[string]any{"err": err.Error()})
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "request violates a data constraint", nil)
	case errors.Is(err, domain.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	case errors.Is(err, domain.ErrConflict):
		return writeError(c, fiber.StatusConflict, "CONFLICT", "resource already exists", nil)
	case errors.Is(err, domain.ErrReferentialIntegrity):
		return writeError(c, fiber.StatusUnprocessableEntity, "REFERENTIAL_INTEGRITY", "referenced category does not exist", nil)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		applog.Error(c, "server.upstream", err, nil)
		return writeError(c, fiber.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "database unavailable, retry later", nil)
	case errors.As(err, &ferr) && ferr.Code < fiber.StatusInternalServerError:
		return writeError(c, ferr.Code, codeFor(ferr.Code), ferr.Message, nil)
	case errors.As(err, &ferr) && ferr.Code == fiber.StatusNotImplemented:
		return writeError(c, ferr.Code, "NOT_IMPLEMENTED", ferr.Message, nil)
	}

	applog.Error(c, "server.error", err, nil)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong. Please try again.", nil)
}

func writeError(c *fiber.Ctx, status int, code, msg string, details any) error {
	return c.Status(status).JSON(errorBody{Error: errorDetail{Code: code, Message: msg, Details: details}})
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	}
	return "BAD_REQUEST"
}
