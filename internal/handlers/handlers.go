// Package handlers maps HTTP requests onto the services. Handlers never write error
// responses themselves: they return errors to the app's error handler.
package handlers

import (
	"proshop/internal/errs"
	"proshop/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes the request body into dst and checks its validate tags.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return &errs.Error{Status: fiber.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	if err := models.Check(dst); err != nil {
		return errs.Validation(err, err)
	}
	return nil
}
