package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "shubakar/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the longest input bcrypt hashes.
const MaxPasswordBytes = 72

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

// New returns a validator that reports fields by their JSON names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
	return v
}

// Struct validates s and translates failures into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, err := range errs {
		out = append(out, ValidationError{
			Field:   fieldPath(err.Namespace()),
			Message: message(err),
		})
	}
	return out
}

// ToAppError wraps a validation failure in a 400 carrying the field list.
func ToAppError(message string, err error) *apperrors.AppError {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, map[string]any{"fields": []ValidationError(verrs)})
	}
	var verr ValidationError
	if errors.As(err, &verr) {
		return apperrors.Validation(message, map[string]any{"fields": []ValidationError{verr}})
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

// fieldPath drops the root struct name: "RegisterRequest.location.city" -> "location.city".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "mongodb":
		return "must be a valid id"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + err.Param()
	case "min":
		if isCollection(err.Kind()) {
			return fmt.Sprintf("must contain at least %s characters or items", err.Param())
		}
		return "must be at least " + err.Param()
	case "max":
		if isCollection(err.Kind()) {
			return fmt.Sprintf("must contain at most %s characters or items", err.Param())
		}
		return "must be at most " + err.Param()
	case "bcryptmax":
		return fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)
	case "gt":
		return "must be greater than " + err.Param()
	case "datetime":
		return "must match the format " + humanLayout(err.Param())
	default:
		return "failed on " + err.Tag()
	}
}

func isCollection(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice || k == reflect.Map
}

func humanLayout(layout string) string {
	if layout == "15:04" {
		return "HH:MM"
	}
	return layout
}
