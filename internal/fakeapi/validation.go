package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"skillswap/internal/models"
)

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	tags := strings.Fields(models.AvailabilityTags)
	v.RegisterValidation("availability", func(fl validator.FieldLevel) bool {
		return slices.Contains(tags, fl.Field().String())
	})
	return v
}

// requestError is a body problem attributable to one field.
type requestError struct {
	Field   string
	Message string
}

func (e *requestError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func decodeAndValidate(body io.Reader, dst any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return &requestError{Message: "invalid JSON body"}
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &requestError{Message: "invalid JSON body"}
	}

	return validateRequest(dst)
}

func validateRequest(dst any) error {
	err := requestValidator.Struct(dst)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &requestError{Message: "invalid request payload"}
	}

	first := validationErrors[0]
	field := first.Field()
	switch first.Tag() {
	case "required":
		return &requestError{Field: field, Message: "This field is required."}
	case "email":
		return &requestError{Field: field, Message: "Enter a valid email address."}
	case "min", "gte":
		if first.Kind() == reflect.String {
			return &requestError{Field: field, Message: fmt.Sprintf("Ensure this field has at least %s characters.", first.Param())}
		}
		return &requestError{Field: field, Message: fmt.Sprintf("Ensure this value is greater than or equal to %s.", first.Param())}
	case "max", "lte":
		if first.Kind() == reflect.String {
			return &requestError{Field: field, Message: fmt.Sprintf("Ensure this field has no more than %s characters.", first.Param())}
		}
		return &requestError{Field: field, Message: fmt.Sprintf("Ensure this value is less than or equal to %s.", first.Param())}
	case "oneof":
		return &requestError{Field: field, Message: "Select a valid choice."}
	default:
		return &requestError{Field: field, Message: "Invalid value."}
	}
}

func writeRequestError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) && reqErr.Field != "" {
		fieldError(w, reqErr.Field, reqErr.Message)
		return
	}
	badRequest(w, err.Error())
}
