// Package validators holds the struct validator shared by the per-route validators.
package validators

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates req and returns field errors keyed by json name, or nil.
func Struct(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"body": err.Error()}
	}

	errors := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, exists := errors[field]; exists {
			continue
		}
		errors[field] = message(fe)
	}
	return errors
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", field)
	case "email":
		return "Invalid email!"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s items!", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long!", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits!", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s!", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid!", field)
	}
}

// ID parses a positive integer route param and stores it in Locals under the
// same name.
func ID(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(param))
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid "+param+"!")
		}
		c.Locals(param, uint(id))
		return c.Next()
	}
}

// LocalID returns an id stored by ID.
func LocalID(c *fiber.Ctx, param string) uint {
	id, _ := c.Locals(param).(uint)
	return id
}
