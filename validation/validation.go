package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	v10 "github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *v10.Validate {
	v := v10.New(v10.WithRequiredStructEnabled())
	// report json names so error fields match the request body
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(sf.Name)
		}
		return name
	})
	_ = v.RegisterValidation("decimals", decimals)
	return v
}

// decimals limits a float field to at most <param> fractional digits, so
// values survive a NUMERIC(p, <param>) column unchanged.
func decimals(fl v10.FieldLevel) bool {
	places, err := strconv.Atoi(fl.Param())
	if err != nil || places < 0 {
		return false
	}
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
	default:
		return false
	}
	scaled := field.Float() * math.Pow10(places)
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

// Validate runs struct validation using go-playground/validator.
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// FormatValidationErrors converts validator.ValidationErrors into a slice of
// FieldError where Code follows "INVALID_<RULE>" or "INVALID_<RULE>|<param>".
func FormatValidationErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var ve v10.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Code: "INVALID", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(ve))
	for _, f := range ve {
		code := "INVALID_" + strings.ToUpper(f.Tag())
		if f.Param() != "" {
			code += "|" + f.Param()
		}
		out = append(out, FieldError{Field: f.Field(), Code: code, Message: message(f)})
	}
	return out
}

func message(f v10.FieldError) string {
	switch f.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", f.Field())
	case "gte", "min":
		return fmt.Sprintf("%s must be greater than or equal to %s", f.Field(), f.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f.Field(), f.Param())
	case "decimals":
		return fmt.Sprintf("%s must have at most %s decimal places", f.Field(), f.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be less than or equal to %s", f.Field(), f.Param())
	default:
		return fmt.Sprintf("%s is invalid", f.Field())
	}
}
