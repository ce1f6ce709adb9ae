// Package validate checks request structs against their `validate` tags
// using go-playground/validator. Field names in messages follow the json
// tags, so errors read the way clients spell the fields.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Decimals are compared as numbers so gte/lte work on money fields.
	val.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return val
}

// Struct validates s and returns the first failure as a readable error,
// or nil.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if unit := lengthUnit(fe.Kind()); unit != "" {
			return fmt.Sprintf("%s must have at least %s %s", field, fe.Param(), unit)
		}
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "max":
		if unit := lengthUnit(fe.Kind()); unit != "" {
			return fmt.Sprintf("%s must have at most %s %s", field, fe.Param(), unit)
		}
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "email":
		return field + " must be a valid email"
	case "gtefield":
		return fmt.Sprintf("%s must be >= %s", field, lowerFirst(fe.Param()))
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

// fieldPath drops the root struct name: "CreateOrderRequest.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func lengthUnit(k reflect.Kind) string {
	switch k {
	case reflect.Slice, reflect.Array, reflect.Map:
		return "entries"
	case reflect.String:
		return "characters"
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
