package response

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"payment_records/internal/domain/entities"

	"github.com/shopspring/decimal"
)

func TestFromPayment(t *testing.T) {
	now := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	card := "1111"
	p := entities.Payment{
		ID:            "pay-1",
		DebitCode:     456,
		PayerDocument: "52998224725",
		Method:        entities.PaymentMethodCreditCard,
		CardNumber:    &card,
		Amount:        decimal.NewFromInt(500),
		State:         entities.NewPaymentState(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	out := FromPayment(p, "https://api.example.com")
	if out.Amount.String() != "500.00" {
		t.Fatalf("expected amount 500.00, got %s", out.Amount)
	}
	if out.Status != "PENDING" || !out.Active || *out.CardNumber != "1111" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if out.Links[RelSelf].Href != "https://api.example.com/payments/pay-1" {
		t.Fatalf("unexpected self link: %+v", out.Links[RelSelf])
	}
	if out.Links[RelUpdateStatus].Method != "PUT" || out.Links[RelDelete].Method != "DELETE" {
		t.Fatalf("unexpected links: %+v", out.Links)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(raw), `"amount":500.00`) || !strings.Contains(string(raw), `"_links"`) {
		t.Fatalf("unexpected json: %s", raw)
	}
}

func TestFromPayments_NonCardAndEmpty(t *testing.T) {
	boleto := entities.Payment{ID: "pay-2", Method: entities.PaymentMethodBoleto, Amount: decimal.RequireFromString("100.1"), State: entities.NewPaymentState()}

	out := FromPayments([]entities.Payment{boleto}, "")
	if len(out) != 1 || out[0].CardNumber != nil || out[0].Amount.String() != "100.10" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if out[0].Links[RelList].Href != "/payments" {
		t.Fatalf("unexpected list link: %+v", out[0].Links[RelList])
	}

	empty := FromPayments(nil, "")
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice")
	}
	raw, _ := json.Marshal(empty)
	if string(raw) != "[]" {
		t.Fatalf("expected [], got %s", raw)
	}
}
