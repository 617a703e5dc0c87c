package controllers

import (
	"ecuestre_go/services"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes and validates a JSON request body. On failure the 400
// response has already been written and handled is true.
func parseBody(c *fiber.Ctx, dst interface{}) (handled bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fieldMessage(fe)
			}
			return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  fieldMessage(verrs[0]),
				"fields": fields,
			})
		}
		return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return false, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio", fe.Field())
	case "email":
		return fmt.Sprintf("El campo %s debe ser un email válido", fe.Field())
	case "oneof":
		return fmt.Sprintf("El campo %s debe ser uno de: %s", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("El campo %s debe ser al menos %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("El campo %s debe ser como máximo %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("El campo %s es inválido", fe.Field())
}

// paramID reads a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ID inválido"})
}

// queryInt parses an optional integer query value; def is used when absent.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// queryBool parses an optional boolean filter; nil when absent.
func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// serviceError writes the response for an error returned by a service.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	var (
		ve *services.ValidationError
		ce *services.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Message})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &ce):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": ce.Message})
	}
	logrus.WithError(err).WithFields(logrus.Fields{
		"path":   c.Path(),
		"method": c.Method(),
	}).Error(fallback)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
}
