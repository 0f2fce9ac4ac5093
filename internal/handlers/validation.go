package handlers

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// TON addresses come in raw form (workchain:hex) or user-friendly base64 form.
var (
	rawTONAddress      = regexp.MustCompile(`^-?[0-9]+:[0-9a-fA-F]{64}$`)
	friendlyTONAddress = regexp.MustCompile(`^[A-Za-z0-9_+/-]{48}$`)
)

// RegisterValidators adds the custom binding tags used by the request DTOs to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	if err := v.RegisterValidation("positive_decimal", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && value.IsPositive()
	}); err != nil {
		return fmt.Errorf("failed to register 'positive_decimal': %w", err)
	}

	if err := v.RegisterValidation("ton_address", func(fl validator.FieldLevel) bool {
		addr := fl.Field().String()
		return rawTONAddress.MatchString(addr) || friendlyTONAddress.MatchString(addr)
	}); err != nil {
		return fmt.Errorf("failed to register 'ton_address': %w", err)
	}
	return nil
}
