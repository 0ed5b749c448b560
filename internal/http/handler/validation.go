package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const invalidInputMessage = "Invalid input data."

// FieldDetail describes one reason a request was rejected before reaching the service.
type FieldDetail struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// validationError carries the details of a rejected request.
type validationError struct {
	details []FieldDetail
}

func (e *validationError) Error() string {
	parts := make([]string, 0, len(e.details))
	for _, d := range e.details {
		parts = append(parts, d.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, rule, message string) *validationError {
	return &validationError{details: []FieldDetail{{Field: field, Rule: rule, Message: message}}}
}

// NewValidator returns a validator that reports json field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeStrict decodes a single JSON object into dst rejecting unknown fields,
// then runs struct validation.
func decodeStrict(r *http.Request, v *validator.Validate, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return invalid("", "json", "request body must contain a single JSON object")
	}

	return validateStruct(v, dst)
}

func decodeError(err error) *validationError {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.Is(err, io.EOF):
		return invalid("", "required", "request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return invalid("", "json", "request body is not valid JSON")
	case errors.As(err, &typeErr):
		return invalid(typeErr.Field, "type", fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.Kind()))
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return invalid(field, "additionalProperties", fmt.Sprintf("%s is not an allowed property", field))
	default:
		return invalid("", "json", err.Error())
	}
}

func validateStruct(v *validator.Validate, dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make([]FieldDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, FieldDetail{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return &validationError{details: details}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be an ISO-8601 date-time", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s must be a UUID", fe.Field())
	default:
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}
}

// validateID checks a path parameter against the uuid rule.
func validateID(v *validator.Validate, raw string) error {
	if err := v.Var(raw, "required,uuid"); err != nil {
		return invalid("id", "uuid", "id must be a UUID")
	}
	return nil
}
