package services

import (
	"errors"
	"fmt"
	"net/http"

	"proshop/internal/errs"
	"proshop/internal/models"
	"proshop/internal/repositories"
)

// translate maps repository and model errors onto the typed errors handlers return.
// what names the resource for not-found messages, e.g. "Product".
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return errs.Validation(verrs, err)
	case errors.Is(err, repositories.ErrNotFound):
		return &errs.Error{Status: http.StatusNotFound, Message: what + " not found", Err: err}
	case errors.Is(err, repositories.ErrDuplicate):
		return &errs.Error{Status: http.StatusBadRequest, Message: what + " already exists", Err: err}
	}
	var typed *errs.Error
	if errors.As(err, &typed) {
		return err
	}
	return errs.Internal(fmt.Errorf("%s: %w", what, err))
}
