// Package validation runs struct-tag validation for local forms and for
// decoded backend responses.
package validation

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"skillswap/internal/apperr"
	"skillswap/internal/models"
)

var (
	validate    = newValidator()
	plainPolicy = bluemonday.StrictPolicy()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	v.RegisterValidation("availability", oneOfList(models.AvailabilityTags))
	v.RegisterValidation("swap_duration", oneOfList(models.SwapDurations))
	return v
}

// oneOfList validates a string field against a space separated word list.
func oneOfList(list string) validator.Func {
	allowed := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		allowed[w] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	}
}

// Form validates a local form. The first failing field is reported as a
// field-scoped validation error.
func Form(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		first := validationErrors[0]
		return apperr.Validation(first.Field(), message(first))
	}
	return apperr.Validation("", "invalid form")
}

// Response checks a decoded response against the schema declared by its
// validate tags. v may point to a struct or to a slice of structs.
func Response(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return validate.Struct(rv.Interface())
	case reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			if err := Response(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

// PlainText rejects user-entered text that a strict HTML policy would alter.
// The text itself is never rewritten.
func PlainText(field, s string) error {
	raw := html.UnescapeString(s)
	if html.UnescapeString(plainPolicy.Sanitize(s)) != raw {
		label := strings.ReplaceAll(field, "_", " ")
		return apperr.Validation(field, label+" must be plain text without tags like <b> or <a ...>")
	}
	return nil
}

func message(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "invalid email format"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "gt":
		return label + " is required"
	case "eqfield":
		if fe.Param() == "Password" {
			return "passwords do not match"
		}
		return label + " does not match"
	case "nefield":
		return label + " must be different"
	case "eq":
		if fe.Kind() == reflect.Bool {
			return label + " must be accepted"
		}
		return "invalid " + label
	default:
		return "invalid " + label
	}
}
