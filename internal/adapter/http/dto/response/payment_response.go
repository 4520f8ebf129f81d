package response

import (
	"encoding/json"
	"net/http"
	"time"

	"payment_records/internal/domain/entities"
)

const (
	RelSelf         = "self"
	RelList         = "list"
	RelUpdateStatus = "update-status"
	RelDelete       = "delete"
)

// Link is a hypermedia reference to a related operation.
type Link struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

type PaymentResponse struct {
	ID            string          `json:"id"`
	DebitCode     int64           `json:"debit_code"`
	PayerDocument string          `json:"payer_document"`
	PaymentMethod string          `json:"payment_method"`
	CardNumber    *string         `json:"card_number"`
	Amount        json.Number     `json:"amount" swaggertype:"number"`
	Status        string          `json:"status"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Links         map[string]Link `json:"_links"`
}

func FromPayment(p entities.Payment, baseURL string) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		DebitCode:     p.DebitCode,
		PayerDocument: p.PayerDocument,
		PaymentMethod: string(p.Method),
		CardNumber:    p.CardNumber,
		Amount:        json.Number(p.Amount.StringFixed(2)),
		Status:        string(p.State.Status),
		Active:        p.State.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Links:         BuildLinks(p, baseURL),
	}
}

func FromPayments(payments []entities.Payment, baseURL string) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, FromPayment(p, baseURL))
	}
	return out
}

// BuildLinks returns the self, list, update-status and delete links of p.
func BuildLinks(p entities.Payment, baseURL string) map[string]Link {
	collection := baseURL + "/payments"
	self := collection + "/" + p.ID
	return map[string]Link{
		RelSelf:         {Href: self, Method: http.MethodGet},
		RelList:         {Href: collection, Method: http.MethodGet},
		RelUpdateStatus: {Href: self + "/status", Method: http.MethodPut},
		RelDelete:       {Href: self, Method: http.MethodDelete},
	}
}
