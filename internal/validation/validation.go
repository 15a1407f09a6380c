// Package validation runs declarative field rules against a request before it
// reaches its handler.
//
// Rules are grouped in chains, one chain per field and location:
//
//	validation.Body("price").
//		IsNumeric("Valor no valido").
//		GreaterThan(0, "El precio debe ser mayor a 0")
//
// Every rule of every chain is evaluated; failures are reported together, in
// declaration order, as a 400 response.
package validation

import (
	"bytes"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

// Location tells where a field is read from.
type Location string

const (
	LocationBody   Location = "body"
	LocationParams Location = "params"
)

const bodyLocalKey = "validation.body"

var validate = validator.New()

// FieldError describes one failed rule.
type FieldError struct {
	Field    string   `json:"field"`
	Location Location `json:"location"`
	Message  string   `json:"msg"`
	Value    any      `json:"value,omitempty"`
}

type rule struct {
	check   func(value any) bool
	message string
}

// Chain is the ordered list of rules attached to one field.
type Chain struct {
	field    string
	location Location
	rules    []rule
}

// Body starts a chain for a field of the JSON request body.
func Body(field string) *Chain {
	return &Chain{field: field, location: LocationBody}
}

// Param starts a chain for a route parameter.
func Param(field string) *Chain {
	return &Chain{field: field, location: LocationParams}
}

// IsNumeric requires a number or a numeric string.
func (c *Chain) IsNumeric(message string) *Chain {
	return c.Custom(tag("numeric"), message)
}

// NotEmpty requires the field to be present with a non-empty textual form.
func (c *Chain) NotEmpty(message string) *Chain {
	return c.Custom(func(value any) bool {
		return value != nil && validate.Var(cast.ToString(value), "required") == nil
	}, message)
}

// IsBoolean requires a boolean or a string strconv.ParseBool accepts.
func (c *Chain) IsBoolean(message string) *Chain {
	return c.Custom(tag("boolean"), message)
}

// GreaterThan requires a value that converts to a number strictly above bound.
func (c *Chain) GreaterThan(bound float64, message string) *Chain {
	gt := "gt=" + strconv.FormatFloat(bound, 'f', -1, 64)
	return c.Custom(func(value any) bool {
		if value == nil {
			return false
		}
		f, err := cast.ToFloat64E(value)
		return err == nil && validate.Var(f, gt) == nil
	}, message)
}

// Custom appends an arbitrary predicate.
func (c *Chain) Custom(check func(value any) bool, message string) *Chain {
	c.rules = append(c.rules, rule{check: check, message: message})
	return c
}

// Check evaluates every rule against value and returns the failures in order.
func (c *Chain) Check(value any) []FieldError {
	var errs []FieldError
	for _, r := range c.rules {
		if !r.check(value) {
			errs = append(errs, FieldError{
				Field:    c.field,
				Location: c.location,
				Message:  r.message,
				Value:    value,
			})
		}
	}
	return errs
}

func tag(t string) func(value any) bool {
	return func(value any) bool {
		return value != nil && validate.Var(value, t) == nil
	}
}

// BodyFrom returns the request body decoded as a JSON object. An empty body is
// an empty object. The result is cached on the context.
func BodyFrom(c *fiber.Ctx) (map[string]any, error) {
	if body, ok := c.Locals(bodyLocalKey).(map[string]any); ok {
		return body, nil
	}

	body := map[string]any{}
	if raw := c.Body(); len(bytes.TrimSpace(raw)) > 0 {
		if err := c.App().Config().JSONDecoder(raw, &body); err != nil {
			return nil, err
		}
		if body == nil {
			body = map[string]any{}
		}
	}
	c.Locals(bodyLocalKey, body)
	return body, nil
}

// Run evaluates all chains against the request without short-circuiting.
func Run(c *fiber.Ctx, chains ...*Chain) ([]FieldError, error) {
	body, err := BodyFrom(c)
	if err != nil {
		return nil, err
	}

	var errs []FieldError
	for _, chain := range chains {
		errs = append(errs, chain.Check(lookup(c, body, chain))...)
	}
	return errs, nil
}

func lookup(c *fiber.Ctx, body map[string]any, chain *Chain) any {
	switch chain.location {
	case LocationParams:
		if v := c.Params(chain.field); v != "" {
			return v
		}
		return nil
	default:
		return body[chain.field]
	}
}

// Handler is the middleware form of Run: it answers 400 with the error list
// when any rule fails and passes control on otherwise.
func Handler(chains ...*Chain) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errs, err := Run(c, chains...)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "El cuerpo de la solicitud no es un JSON valido",
			})
		}
		if len(errs) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": errs,
			})
		}
		return c.Next()
	}
}
