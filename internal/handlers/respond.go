package handlers

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"time"

	"cardapio/internal/apperror"
	"cardapio/internal/middleware"
	"cardapio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// dateLayout is the wire format of birth dates.
const dateLayout = "2006-01-02"

// fieldErrors is returned when a request body fails validation.
type fieldErrors map[string]string

func (fieldErrors) Error() string { return "validation failed" }

// badBody is returned when a request body cannot be parsed.
type badBody struct{ err error }

func (b badBody) Error() string { return b.err.Error() }

// Guard is the middleware chain in front of authenticated routes.
type Guard []fiber.Handler

func (g Guard) then(h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(g)+1)
	out = append(out, g...)
	return append(out, h)
}

// NewValidator returns a validator that understands decimal fields.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// bind parses the JSON body into out and validates it.
func bind(c *fiber.Ctx, v *validator.Validate, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return badBody{err: err}
	}
	if err := v.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		errorMessages := make(fieldErrors)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return errorMessages
	}
	return nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, apperror.Validation("birthDate must use the format YYYY-MM-DD")
	}
	return &t, nil
}

// actor reads the caller set by the auth middleware.
func actor(c *fiber.Ctx) (services.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return services.Actor{}, apperror.Unauthenticated("authentication required")
	}
	return a, nil
}

var kindStatus = map[apperror.Kind]int{
	apperror.KindValidation:      fiber.StatusBadRequest,
	apperror.KindNotFound:        fiber.StatusNotFound,
	apperror.KindAuthorization:   fiber.StatusForbidden,
	apperror.KindConflict:        fiber.StatusConflict,
	apperror.KindInvalidState:    fiber.StatusConflict,
	apperror.KindUnauthenticated: fiber.StatusUnauthorized,
}

// respondError writes err as a JSON error response.
func respondError(c *fiber.Ctx, err error) error {
	var fe fieldErrors
	if errors.As(err, &fe) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fe,
		})
	}
	var bb badBody
	if errors.As(err, &bb) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   bb.Error(),
		})
	}

	kind := apperror.KindOf(err)
	if status, ok := kindStatus[kind]; ok {
		log.Printf("%s %s failed (%s): %v", c.Method(), c.Path(), kind, err)
		return c.Status(status).JSON(fiber.Map{
			"message": apperror.Message(err),
			"error":   kind.String(),
		})
	}

	log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

// ErrorHandler is the Fiber error handler for errors that escape the handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"message": fiberErr.Message,
		})
	}
	return respondError(c, err)
}
