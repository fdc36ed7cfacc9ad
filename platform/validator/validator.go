// Package validator wraps go-playground/validator with the enum tags and
// error messages used by the request DTOs.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates request DTOs. Field names in errors follow the json
// or form tag, so messages match what the client sent.
type Validator struct {
	v     *validator.Validate
	enums map[string][]string
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(key), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return &Validator{v: v, enums: make(map[string][]string)}
}

// Struct returns nil or a FieldErrors describing every failed rule.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: val.describe(fe)})
	}
	return out
}

// RegisterEnum registers a tag that accepts only the given values. Empty
// strings pass so the tag composes with omitempty and required.
func (val *Validator) RegisterEnum(tag string, values ...string) error {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	val.enums[tag] = values
	return val.v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, ok := allowed[s]
		return ok
	})
}

func (val *Validator) describe(fe validator.FieldError) string {
	if values, ok := val.enums[fe.Tag()]; ok {
		return "must be one of " + strings.Join(values, ", ")
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "uuid", "uuid4":
		return "must be a UUID"
	case "email":
		return "must be an email address"
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is returned by Struct.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + " " + fe.Message
	}
	return strings.Join(parts, "; ")
}
