package request

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxAmountIntegerDigits = 15

var fieldMessages = map[string]string{
	"debit_code.required":     "debit code is required",
	"debit_code.gt":           "debit code must be a positive integer",
	"payer_document.required": "payer document (CPF/CNPJ) is required",
	"payer_document.min":      "payer document must have between 11 and 14 characters",
	"payer_document.max":      "payer document must have between 11 and 14 characters",
	"payment_method.required": "payment method is required",
	"card_number.max":         "card number must have at most 20 characters",
	"amount.amount":           "payment amount must be greater than zero with at most 15 integer digits",
}

// RegisterValidators installs the payment validations on gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v.RegisterValidation("amount", validateAmount)
}

func validateAmount(fl validator.FieldLevel) bool {
	amount, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok || !amount.IsPositive() {
		return false
	}
	return len(amount.Truncate(0).String()) <= maxAmountIntegerDigits
}

// BindingMessage returns the message for the first failing field of a binding
// error, or the decoder message when the body could not be read.
func BindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fe.Field() + " is invalid"
}
