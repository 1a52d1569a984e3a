package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/clinicdesk/clinic-api/internal/model"
)

// RegisterValidators wires custom binding validators into gin's validator
// engine. Field names in validation errors report the json tag, not the Go
// field name.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return model.ValidPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}
