// Package validate wraps a single shared go-playground validator.
//
// A *validator.Validate caches struct metadata after the first call, so
// building it once at package load is much cheaper than validator.New()
// per request.
package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names ("firstName") instead of Go names ("FirstName")
	// so messages line up with what the client actually sent.
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// notblank is not baked in; it ships in the non-standard package.
	if err := val.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	return val
}

// Struct checks every validate:"..." tag on s. It returns nil or a
// validator.ValidationErrors.
func Struct(s any) error {
	return v.Struct(s)
}
