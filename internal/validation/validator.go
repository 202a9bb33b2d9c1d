package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with form-field naming and readable messages.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator. Field names come from the `form` tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("minnum", minNumber)
	_ = v.RegisterValidation("maxnum", maxNumber)
	_ = v.RegisterValidation("whole", wholeNumber)
	return &Validator{validate: v}
}

// Struct validates s and returns field errors, or nil when s passes.
func (v *Validator) Struct(s any) Errors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{"_": err.Error()}
	}
	errs := Errors{}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
	case "numeric", "number":
		return fmt.Sprintf("The %s field must be a number.", name)
	case "minnum":
		return fmt.Sprintf("The %s field must be at least %s.", name, fe.Param())
	case "maxnum":
		return fmt.Sprintf("The %s field must not be greater than %s.", name, fe.Param())
	case "whole":
		return fmt.Sprintf("The %s field must be an integer.", name)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	case "oneof":
		return Invalid(fe.Field())
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}

func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// minNumber checks a numeric string against the tag parameter.
func minNumber(fl validator.FieldLevel) bool {
	limit, err := strconv.ParseFloat(fl.Param(), 64)
	if err != nil {
		return false
	}
	value, ok := numberOf(fl.Field())
	return ok && value >= limit
}

// maxNumber is the upper bound counterpart of minNumber.
func maxNumber(fl validator.FieldLevel) bool {
	limit, err := strconv.ParseFloat(fl.Param(), 64)
	if err != nil {
		return false
	}
	value, ok := numberOf(fl.Field())
	return ok && value <= limit
}

func wholeNumber(fl validator.FieldLevel) bool {
	value, ok := numberOf(fl.Field())
	return ok && !math.IsInf(value, 0) && value == math.Trunc(value)
}

// numberOf parses the field. Out of range strings yield ±Inf so bound
// checks reject them.
func numberOf(field reflect.Value) (float64, bool) {
	switch field.Kind() {
	case reflect.String:
		value, err := ParseNumber(field.String())
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return value, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(field.Int()), true
	case reflect.Float32, reflect.Float64:
		return field.Float(), true
	default:
		return 0, false
	}
}

// ParseNumber parses a trimmed decimal string. Values that overflow float64
// return ±Inf together with an error wrapping strconv.ErrRange.
func ParseNumber(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}
