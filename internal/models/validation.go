package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report field names the way clients send them.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldError describes one failed constraint on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the result of a failed Validate call.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed at least one constraint.
func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// validateStruct runs the tag rules of s and converts the outcome into ValidationErrors.
func validateStruct(s interface{}) ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{Field: fieldPath(e), Message: messageFor(e)})
	}
	return out
}

// fieldPath drops the root struct name from the namespace: "Order.shippingAddress.city" -> "shippingAddress.city".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email address"
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "min":
		switch e.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", e.Param())
		case reflect.Slice:
			return fmt.Sprintf("must contain at least %s entries", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	}
	return fmt.Sprintf("failed on the '%s' rule", e.Tag())
}

// Check runs the tag rules of any struct, such as a request body.
func Check(s interface{}) error {
	if verrs := validateStruct(s); len(verrs) > 0 {
		return verrs
	}
	return nil
}
