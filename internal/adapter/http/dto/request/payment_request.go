package request

import (
	"strings"

	"payment_records/internal/domain/entities"
	"payment_records/internal/usecase"

	"github.com/shopspring/decimal"
)

// CreatePaymentRequest is the payload of POST /payments.
type CreatePaymentRequest struct {
	DebitCode     *int64          `json:"debit_code" binding:"required,gt=0"`
	PayerDocument string          `json:"payer_document" binding:"required,min=11,max=14"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	CardNumber    string          `json:"card_number" binding:"max=20"`
	Amount        decimal.Decimal `json:"amount" binding:"amount"`
}

// ToCommand builds the use case input. An unknown payment method is passed
// through upper-cased so the use case reports it after the debit code check.
func (r CreatePaymentRequest) ToCommand() usecase.CreatePaymentCommand {
	var debitCode int64
	if r.DebitCode != nil {
		debitCode = *r.DebitCode
	}
	method, err := entities.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		method = entities.PaymentMethod(strings.ToUpper(strings.TrimSpace(r.PaymentMethod)))
	}
	return usecase.CreatePaymentCommand{
		DebitCode:     debitCode,
		PayerDocument: r.PayerDocument,
		Method:        method,
		CardNumber:    r.CardNumber,
		Amount:        r.Amount,
	}
}

// UpdateStatusRequest is the payload of PUT /payments/:id/status.
type UpdateStatusRequest struct {
	Status *string `json:"status"`
}

func (r UpdateStatusRequest) ResolveStatus() *entities.PaymentStatus {
	if r.Status == nil {
		return nil
	}
	status, err := entities.ParsePaymentStatus(*r.Status)
	if err != nil {
		status = entities.PaymentStatus(strings.ToUpper(strings.TrimSpace(*r.Status)))
	}
	return &status
}

// ListPaymentsQuery holds the optional filters of GET /payments.
type ListPaymentsQuery struct {
	DebitCode     *int64 `form:"debit_code"`
	PayerDocument string `form:"payer_document"`
	Status        string `form:"status"`
}

func (q ListPaymentsQuery) ToFilter() entities.PaymentFilter {
	filter := entities.PaymentFilter{DebitCode: q.DebitCode}
	if doc := strings.TrimSpace(q.PayerDocument); doc != "" {
		filter.PayerDocument = &doc
	}
	if strings.TrimSpace(q.Status) != "" {
		filter.Status = UpdateStatusRequest{Status: &q.Status}.ResolveStatus()
	}
	return filter
}
