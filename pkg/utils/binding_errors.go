package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BindingError turns a gin binding failure into ErrInvalidInput with one
// readable message per failed field. Malformed JSON keeps a generic message.
func BindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: invalid request format", ErrInvalidInput)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(oneOfValues(fe.Param()), ", "))
	case "datetime":
		return field + " must be YYYY-MM-DD"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// fieldPath drops the root struct name and lower-cases the first letter of
// each segment so the path matches the JSON keys: Demographics.Gender
// becomes demographics.gender.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	parts := strings.Split(namespace, ".")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

// oneOfValues splits a oneof parameter, honoring single-quoted values.
func oneOfValues(param string) []string {
	var values []string
	for param != "" {
		param = strings.TrimLeft(param, " ")
		if param == "" {
			break
		}
		if param[0] == '\'' {
			end := strings.IndexByte(param[1:], '\'')
			if end < 0 {
				values = append(values, param[1:])
				break
			}
			values = append(values, param[1:end+1])
			param = param[end+2:]
			continue
		}
		end := strings.IndexByte(param, ' ')
		if end < 0 {
			values = append(values, param)
			break
		}
		values = append(values, param[:end])
		param = param[end:]
	}
	return values
}
