package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	request "payment_records/internal/adapter/http/dto/request"
	"payment_records/internal/adapter/http/handlers/mocks"
	"payment_records/internal/domain/entities"
	"payment_records/internal/domain/validation"
	"payment_records/internal/usecase"
	"payment_records/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

const testBaseURL = "http://localhost:8080"

func newPaymentRouter(t *testing.T, uc usecase.IPaymentUseCase) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := request.RegisterValidators(); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	h := NewPaymentHandler(uc, testBaseURL)
	r := gin.New()
	r.POST("/payments", h.CreatePayment)
	r.GET("/payments", h.ListPayments)
	r.GET("/payments/:id", h.GetPayment)
	r.PUT("/payments/:id/status", h.UpdatePaymentStatus)
	r.DELETE("/payments/:id", h.DeletePayment)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body %q: %v", w.Body.String(), err)
	}
	return body
}

func pendingPayment(id string) entities.Payment {
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	card := "1111"
	return entities.Payment{
		ID:            id,
		DebitCode:     456,
		PayerDocument: "52998224725",
		Method:        entities.PaymentMethodCreditCard,
		CardNumber:    &card,
		Amount:        decimal.RequireFromString("500.00"),
		State:         entities.NewPaymentState(),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestPaymentHandler_CreatePayment(t *testing.T) {
	t.Run("unreadable json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		w := doRequest(r, http.MethodPost, "/payments", "{")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if decodeBody(t, w)["code"] != "INVALID_REQUEST" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("validation message", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		w := doRequest(r, http.MethodPost, "/payments", `{"debit_code":0,"payer_document":"52998224725","payment_method":"PIX","amount":10}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if decodeBody(t, w)["message"] != "debit code must be a positive integer" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("duplicate debit code", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payment{}, usecase.ErrDebitCodeAlreadyExists)

		w := doRequest(r, http.MethodPost, "/payments", `{"debit_code":456,"payer_document":"52998224725","payment_method":"PIX","amount":10}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		if decodeBody(t, w)["code"] != "DEBIT_CODE_ALREADY_EXISTS" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("method error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payment{}, validation.ErrCardNumberRequired)

		w := doRequest(r, http.MethodPost, "/payments", `{"debit_code":456,"payer_document":"52998224725","payment_method":"CREDIT_CARD","amount":10}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if decodeBody(t, w)["code"] != "INVALID_PAYMENT_METHOD" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, cmd usecase.CreatePaymentCommand) (entities.Payment, error) {
			if cmd.DebitCode != 456 || cmd.Method != entities.PaymentMethodCreditCard || cmd.CardNumber != "4111111111111111" {
				t.Fatalf("unexpected command: %+v", cmd)
			}
			return pendingPayment("pay-1"), nil
		})

		w := doRequest(r, http.MethodPost, "/payments", `{"debit_code":456,"payer_document":"52998224725","payment_method":"credit_card","card_number":"4111111111111111","amount":500}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		if loc := w.Header().Get("Location"); loc != testBaseURL+"/payments/pay-1" {
			t.Fatalf("unexpected location %q", loc)
		}
		body := decodeBody(t, w)
		if body["id"] != "pay-1" || body["card_number"] != "1111" || body["status"] != "PENDING" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
		if !bytes.Contains(w.Body.Bytes(), []byte(`"amount":500.00`)) {
			t.Fatalf("expected two fraction digits: %s", w.Body.String())
		}
		if _, ok := body["_links"].(map[string]any)["update-status"]; !ok {
			t.Fatalf("missing update-status link: %s", w.Body.String())
		}
	})
}

func TestPaymentHandler_UpdatePaymentStatus(t *testing.T) {
	t.Run("transition rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		transitionErr := &entities.StatusTransitionError{From: entities.PaymentStatusSucceeded, To: entities.PaymentStatusFailed, Reason: "payment already succeeded"}
		uc.EXPECT().UpdateStatus(gomock.Any(), "pay-1", gomock.Any()).Return(entities.Payment{}, transitionErr)

		w := doRequest(r, http.MethodPut, "/payments/pay-1/status", `{"status":"FAILED"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["code"] != "INVALID_STATUS_TRANSITION" || body["message"] != "payment already succeeded" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("missing status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().UpdateStatus(gomock.Any(), "pay-1", (*entities.PaymentStatus)(nil)).Return(entities.Payment{}, usecase.ErrStatusRequired)

		w := doRequest(r, http.MethodPut, "/payments/pay-1/status", `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().UpdateStatus(gomock.Any(), "missing", gomock.Any()).Return(entities.Payment{}, usecase.ErrPaymentNotFound)

		w := doRequest(r, http.MethodPut, "/payments/missing/status", `{"status":"SUCCEEDED"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		updated := pendingPayment("pay-1")
		updated.State.Status = entities.PaymentStatusSucceeded
		uc.EXPECT().UpdateStatus(gomock.Any(), "pay-1", gomock.Any()).DoAndReturn(func(_ any, _ string, status *entities.PaymentStatus) (entities.Payment, error) {
			if status == nil || *status != entities.PaymentStatusSucceeded {
				t.Fatalf("unexpected status %v", status)
			}
			return updated, nil
		})

		w := doRequest(r, http.MethodPut, "/payments/pay-1/status", `{"status":"succeeded"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if decodeBody(t, w)["status"] != "SUCCEEDED" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestPaymentHandler_DeletePayment(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().SoftDelete(gomock.Any(), "pay-1").Return(nil)

		w := doRequest(r, http.MethodDelete, "/payments/pay-1", "")
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	})

	t.Run("not pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().SoftDelete(gomock.Any(), "pay-1").Return(&entities.StatusTransitionError{Reason: "only pending payments can be deleted"})

		w := doRequest(r, http.MethodDelete, "/payments/pay-1", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("concurrent update", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().SoftDelete(gomock.Any(), "pay-1").Return(interfaces.ErrConcurrentUpdate)

		w := doRequest(r, http.MethodDelete, "/payments/pay-1", "")
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})
}

func TestPaymentHandler_ListPayments(t *testing.T) {
	t.Run("filters are forwarded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, f entities.PaymentFilter) ([]entities.Payment, error) {
			if f.DebitCode == nil || *f.DebitCode != 456 || f.Status == nil || *f.Status != entities.PaymentStatusPending {
				t.Fatalf("unexpected filter: %+v", f)
			}
			return []entities.Payment{pendingPayment("pay-1")}, nil
		})

		w := doRequest(r, http.MethodGet, "/payments?debit_code=456&status=pending", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var items []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil || len(items) != 1 {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("empty list", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().List(gomock.Any(), entities.PaymentFilter{}).Return([]entities.Payment{}, nil)

		w := doRequest(r, http.MethodGet, "/payments", "")
		if w.Code != http.StatusOK || w.Body.String() != "[]" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("bad debit code query", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		w := doRequest(r, http.MethodGet, "/payments?debit_code=abc", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("%w: %q", usecase.ErrInvalidStatus, "PAID"))

		w := doRequest(r, http.MethodGet, "/payments?status=paid", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestPaymentHandler_GetPayment(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().GetByID(gomock.Any(), "pay-1").Return(pendingPayment("pay-1"), true, nil)

		w := doRequest(r, http.MethodGet, "/payments/pay-1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("absent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.Payment{}, false, nil)

		w := doRequest(r, http.MethodGet, "/payments/missing", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(t, uc)

		uc.EXPECT().GetByID(gomock.Any(), "pay-1").Return(entities.Payment{}, false, errors.New("connection reset"))

		w := doRequest(r, http.MethodGet, "/payments/pay-1", "")
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		if decodeBody(t, w)["message"] != "An internal error occurred" {
			t.Fatalf("internal cause leaked: %s", w.Body.String())
		}
	})
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	uc := mocks.NewMockIPaymentUseCase(ctrl)
	h := NewHealthHandler(uc)

	r := gin.New()
	r.GET("/ping", h.Ping)
	r.GET("/health", h.Health)

	if w := doRequest(r, http.MethodGet, "/ping", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	uc.EXPECT().Health(gomock.Any()).Return(nil)
	if w := doRequest(r, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	uc.EXPECT().Health(gomock.Any()).Return(errors.New("db down"))
	if w := doRequest(r, http.MethodGet, "/health", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
