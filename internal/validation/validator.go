package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/noah-isme/universidad-api/internal/models"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
)

// Now is the clock used by the date rules.
var Now = time.Now

// New returns a validator with json field names, models.Date support and the date rules registered.
func New() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

// Register installs the custom rules on an existing validator.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		d, ok := field.Interface().(models.Date)
		if !ok || d.IsZero() {
			return nil
		}
		return d.Time()
	}, models.Date{})

	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("past", func(fl validator.FieldLevel) bool {
		return compareToday(fl, func(d, today models.Date) bool { return d.Before(today) })
	})
	_ = v.RegisterValidation("pastorpresent", func(fl validator.FieldLevel) bool {
		return compareToday(fl, func(d, today models.Date) bool { return !d.After(today) })
	})
	_ = v.RegisterValidation("futureorpresent", func(fl validator.FieldLevel) bool {
		return compareToday(fl, func(d, today models.Date) bool { return !d.Before(today) })
	})
}

func compareToday(fl validator.FieldLevel, ok func(d, today models.Date) bool) bool {
	t, isTime := fl.Field().Interface().(time.Time)
	if !isTime {
		return false
	}
	return ok(models.DateOf(t), models.DateOf(Now()))
}

// Check validates payload and converts failures into a VALIDATION_ERROR with field details.
func Check(v *validator.Validate, payload interface{}) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	details := FieldErrors(err)
	if len(details) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return appErrors.WithDetails(appErrors.ErrValidation, "los datos enviados no son válidos", details)
}

// FieldErrors maps validator failures to field level messages.
func FieldErrors(err error) []appErrors.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, appErrors.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio", field)
	case "notblank":
		return fmt.Sprintf("El campo %s no puede estar vacío", field)
	case "email":
		return fmt.Sprintf("El campo %s no es un email válido", field)
	case "min":
		return fmt.Sprintf("El campo %s debe tener al menos %s caracteres", field, fe.Param())
	case "max":
		return fmt.Sprintf("El campo %s no puede tener más de %s caracteres", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("El campo %s debe ser uno de: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("El campo %s debe ser mayor que %s", field, fe.Param())
	case "past":
		return fmt.Sprintf("El campo %s debe ser anterior a la fecha actual", field)
	case "pastorpresent":
		return fmt.Sprintf("El campo %s debe ser anterior o igual a la fecha actual", field)
	case "futureorpresent":
		return fmt.Sprintf("El campo %s debe ser mayor o igual a la fecha actual", field)
	default:
		return fmt.Sprintf("El campo %s no cumple la regla %s", field, fe.Tag())
	}
}
