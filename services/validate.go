package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	utils "github.com/phillip/event-booking-go/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateInput reports any missing required field with one message and
// other rule failures by field name.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return utils.BadRequest(err.Error())
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return utils.BadRequest("One or more required fields are empty")
		}
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "datetime":
		return utils.BadRequest(fe.Field() + " must be formatted as " + fe.Param())
	case "email":
		return utils.BadRequest(fe.Field() + " must be a valid email address")
	default:
		return utils.BadRequest("invalid " + fe.Field())
	}
}
