package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/khoahotran/devprofiles/internal/domain/profile"
	"github.com/khoahotran/devprofiles/pkg/apperror"
)

// RequestValidator checks request bodies against their `validate` tags and
// reports every failed rule as a Violation.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Absent optional values validate as "".
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if t, ok := field.Interface().(profile.Text); ok {
			s, _ := t.Get()
			return s
		}
		return nil
	}, profile.Text{})

	return &RequestValidator{validate: v}
}

// Validate returns nil when payload satisfies every rule.
func (rv *RequestValidator) Validate(payload any) []apperror.Violation {
	err := rv.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []apperror.Violation{{Param: "", Msg: err.Error(), Location: "body"}}
	}

	violations := make([]apperror.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, apperror.Violation{
			Param:    fe.Field(),
			Msg:      violationMessage(fe),
			Location: "body",
		})
	}
	return violations
}

func violationMessage(fe validator.FieldError) string {
	label := fe.Field()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	default:
		return label + " is invalid"
	}
}
