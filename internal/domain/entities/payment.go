package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the payer settles the debit.
type PaymentMethod string

const (
	PaymentMethodBoleto     PaymentMethod = "BOLETO"
	PaymentMethodPix        PaymentMethod = "PIX"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
)

var paymentMethods = []PaymentMethod{
	PaymentMethodBoleto,
	PaymentMethodPix,
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
}

// IsCard reports whether the method requires a card number.
func (m PaymentMethod) IsCard() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodDebitCard
}

func (m PaymentMethod) IsValid() bool {
	for _, known := range paymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// ParsePaymentMethod resolves a method name case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, known := range paymentMethods {
		if strings.EqualFold(string(known), strings.TrimSpace(s)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("invalid payment method: %s", s)
}

// Payment is the payment record persisted by the service.
//
// Storage model:
//   - Postgres: table payments, unique index on debit_code, indexes on
//     payer_document and status.
//   - DynamoDB: PK id, plus a guard item per debit code in the debit codes table.
//
// DebitCode, PayerDocument, Method, CardNumber and Amount never change after
// creation. State is mutated only through the payment use case.
type Payment struct {
	ID            string
	DebitCode     int64
	PayerDocument string
	Method        PaymentMethod
	CardNumber    *string
	Amount        decimal.Decimal
	State         PaymentState
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Exists reports whether the value was loaded from storage.
func (p Payment) Exists() bool {
	return p.ID != ""
}

// PaymentFilter narrows listing queries. Nil fields are ignored; listings are
// always restricted to active records.
type PaymentFilter struct {
	DebitCode     *int64
	PayerDocument *string
	Status        *PaymentStatus
}
