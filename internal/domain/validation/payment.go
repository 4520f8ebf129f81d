package validation

import (
	"errors"
	"fmt"
	"strings"

	"payment_records/internal/domain/entities"

	"github.com/shopspring/decimal"
)

const (
	amountScale    = 2
	maskedCardSize = 4
)

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrCardNumberRequired   = fmt.Errorf("%w: card payment methods require the card number", ErrInvalidPaymentMethod)
	ErrCardNumberNotAllowed = fmt.Errorf("%w: the selected payment method does not take a card number", ErrInvalidPaymentMethod)
)

// ValidateCardConsistency checks that a card number is given iff the method
// is a card method.
func ValidateCardConsistency(method entities.PaymentMethod, cardNumber string) error {
	hasCard := strings.TrimSpace(cardNumber) != ""
	if method.IsCard() && !hasCard {
		return ErrCardNumberRequired
	}
	if !method.IsCard() && hasCard {
		return ErrCardNumberNotAllowed
	}
	return nil
}

// MaskCard keeps only the last four characters of the card number.
// It returns nil for non-card methods and blank numbers.
func MaskCard(method entities.PaymentMethod, cardNumber string) *string {
	if !method.IsCard() {
		return nil
	}
	n := []rune(strings.TrimSpace(cardNumber))
	if len(n) == 0 {
		return nil
	}
	if len(n) > maskedCardSize {
		n = n[len(n)-maskedCardSize:]
	}
	masked := string(n)
	return &masked
}

// NormalizeAmount rescales amount to two fraction digits, rounding half up.
func NormalizeAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(amountScale)
}
