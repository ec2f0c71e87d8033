package middleware

import (
	"errors"

	"proshop/internal/errs"
	"proshop/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler is the only place error responses are shaped. Typed errors keep their
// status; anything unexpected becomes a 500 whose cause is logged, not sent. Outside
// production the body also carries the error chain under "stack".
func ErrorHandler(logger *zap.Logger, production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal Server Error"
		var fields interface{}

		var typed *errs.Error
		var fe *fiber.Error
		switch {
		case errors.As(err, &typed):
			status, message, fields = typed.Status, typed.Message, typed.Fields
		case errors.As(err, &fe):
			status, message = fe.Code, fe.Message
		case errors.Is(err, repositories.ErrNotFound):
			status, message = fiber.StatusNotFound, "Resource not found"
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Any("request_id", c.Locals("requestid")),
				zap.Error(err))
		}

		body := fiber.Map{"message": message}
		if fields != nil {
			body["errors"] = fields
		}
		if !production {
			body["stack"] = err.Error()
		}
		return c.Status(status).JSON(body)
	}
}

// NotFound answers every request no route matched.
func NotFound(c *fiber.Ctx) error {
	return errs.NotFound("Not Found - " + c.OriginalURL())
}
