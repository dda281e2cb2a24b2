package paymentref

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Tag is the struct tag registered by RegisterValidation.
const Tag = "paymentref"

// RegisterValidation makes the paymentref tag available on v:
//
//	type Invoice struct {
//		Reference string `validate:"required,paymentref"`
//	}
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation(Tag, Field)
}

// Field is the validator.Func behind the paymentref tag. Non-string fields fail.
func Field(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return Validate(field.String()).Valid
}
