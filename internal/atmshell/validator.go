package atmshell

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/go-petr/pet-atm/pkg/accountnumpkg"
)

// ValidAccountNumber validates the account number format and check digit.
var ValidAccountNumber validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return accountnumpkg.Valid(s)
	}
	return false
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("accountnum", ValidAccountNumber) // The tag is valid, the error is always nil.

	return v
}

func pinRule(minLen, maxLen int) string {
	return fmt.Sprintf("required,numeric,min=%d,max=%d", minLen, maxLen)
}
