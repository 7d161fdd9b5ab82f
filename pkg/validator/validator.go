// Package validator wraps go-playground/validator with the custom rules
// used by the request DTOs.
package validator

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	v.registerCustomValidations()
	return v
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMessages []string
			for _, e := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"Field '%s' failed validation '%s'",
					e.Field(),
					e.Tag(),
				))
			}
			return fmt.Errorf("validation failed: %v", errMessages)
		}
		return err
	}
	return nil
}

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	pinPattern    = regexp.MustCompile(`^\d{4,6}$`)
	hexIDPattern  = regexp.MustCompile(`^[0-9a-f]{16}$`)
)

func (v *Validator) registerCustomValidations() {
	// Expose decimal.Decimal as float64 so gt/gte tags apply to amounts.
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := val.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// 10-digit mobile number, the format the MMID derivation expects.
	_ = v.validate.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})

	// Short numeric PIN.
	_ = v.validate.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return pinPattern.MatchString(fl.Field().String())
	})

	// 16 lowercase hex digits: the shape of MIDs, UIDs and obfuscated tokens.
	_ = v.validate.RegisterValidation("hexid", func(fl validator.FieldLevel) bool {
		return hexIDPattern.MatchString(fl.Field().String())
	})
}
