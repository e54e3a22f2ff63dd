package http

import (
	"errors"
	"reflect"
	"strings"

	"orderflow/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
)

// requestValidator plugs validator/v10 into echo. Failures are reported with
// the JSON name of the first failing field.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &requestValidator{validate: v}
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}

	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return errs.NewValueIsRequiredErrorWithCause(fe.Field(), fe)
	}
	return errs.NewValueIsInvalidErrorWithCause(fe.Field(), fe)
}
