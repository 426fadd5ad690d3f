package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-restaurante-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// nombres de campo tal como llegan en el JSON o la query
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	return v
}

// bindBody parsea el cuerpo y valida los tags. El error de parseo se distingue con errBadBody.
func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errBadBody
	}
	return validateStruct(out)
}

// bindQuery parsea la query y valida los tags.
func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return errBadQuery
	}
	return validateStruct(out)
}

var (
	errBadBody  = errors.New("cuerpo inválido")
	errBadQuery = domain.Validation("INVALID_QUERY", "parámetros inválidos")
)

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Validation("VALIDATION", err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return domain.Validation("VALIDATION", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " es obligatorio"
	case "email":
		return field + " no es un email válido"
	case "uuid":
		return field + " no es un id válido"
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", field, fe.Param())
	case "min", "max", "len":
		return fmt.Sprintf("%s no cumple %s=%s", field, fe.Tag(), fe.Param())
	default:
		return field + " inválido"
	}
}

// bindError traduce el resultado de bindBody/bindQuery a respuesta.
func (h *base) bindError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errBadBody) {
		return invalidBody(c)
	}
	return writeError(c, h.log, err)
}
