package handlers

import (
	"errors"
	"log"
	"net/http"

	request "payment_records/internal/adapter/http/dto/request"
	response "payment_records/internal/adapter/http/dto/response"
	"payment_records/internal/domain/entities"
	"payment_records/internal/domain/validation"
	"payment_records/internal/usecase"
	"payment_records/internal/usecase/interfaces"
	"payment_records/pkg"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles HTTP requests for payment records.

type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
	baseURL string
}

func NewPaymentHandler(uc usecase.IPaymentUseCase, baseURL string) *PaymentHandler {
	return &PaymentHandler{usecase: uc, baseURL: baseURL}
}

// CreatePayment godoc
// @Summary      Create a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        payment  body      request.CreatePaymentRequest  true  "Payment"
// @Success      201      {object}  response.PaymentResponse
// @Failure      400      {object}  pkg.HTTPError
// @Failure      409      {object}  pkg.HTTPError
// @Router       /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var payload request.CreatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("[payment][handler] create invalid payload err=%v", err)
		writeError(c, pkg.NewDomainErrorSimple("INVALID_REQUEST", request.BindingMessage(err), http.StatusBadRequest))
		return
	}

	created, err := h.usecase.Create(c.Request.Context(), payload.ToCommand())
	if err != nil {
		writeError(c, mapPaymentError(err))
		return
	}

	out := response.FromPayment(created, h.baseURL)
	c.Header("Location", out.Links[response.RelSelf].Href)
	c.JSON(http.StatusCreated, out)
}

// UpdatePaymentStatus godoc
// @Summary      Change the status of a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id      path      string                        true  "Payment ID"
// @Param        status  body      request.UpdateStatusRequest   true  "New status"
// @Success      200     {object}  response.PaymentResponse
// @Failure      400     {object}  pkg.HTTPError
// @Failure      404     {object}  pkg.HTTPError
// @Router       /payments/{id}/status [put]
func (h *PaymentHandler) UpdatePaymentStatus(c *gin.Context) {
	id := c.Param("id")

	var payload request.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("[payment][handler] update-status invalid payload payment_id=%s err=%v", id, err)
		writeError(c, pkg.NewDomainErrorSimple("INVALID_REQUEST", request.BindingMessage(err), http.StatusBadRequest))
		return
	}

	updated, err := h.usecase.UpdateStatus(c.Request.Context(), id, payload.ResolveStatus())
	if err != nil {
		writeError(c, mapPaymentError(err))
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(updated, h.baseURL))
}

// DeletePayment godoc
// @Summary      Soft delete a pending payment
// @Tags         payments
// @Param        id   path  string  true  "Payment ID"
// @Success      204
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	if err := h.usecase.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, mapPaymentError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPayments godoc
// @Summary      List active payments
// @Tags         payments
// @Produce      json
// @Param        debit_code      query     int     false  "Debit code"
// @Param        payer_document  query     string  false  "Payer CPF/CNPJ"
// @Param        status          query     string  false  "PENDING, SUCCEEDED or FAILED"
// @Success      200             {array}   response.PaymentResponse
// @Failure      400             {object}  pkg.HTTPError
// @Router       /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var query request.ListPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, pkg.NewDomainErrorSimple("INVALID_REQUEST", request.BindingMessage(err), http.StatusBadRequest))
		return
	}

	payments, err := h.usecase.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		writeError(c, mapPaymentError(err))
		return
	}

	c.JSON(http.StatusOK, response.FromPayments(payments, h.baseURL))
}

// GetPayment godoc
// @Summary      Get a payment by id
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.PaymentResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, found, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, mapPaymentError(err))
		return
	}
	if !found {
		writeError(c, mapPaymentError(usecase.ErrPaymentNotFound))
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(payment, h.baseURL))
}

func writeError(c *gin.Context, appErr *pkg.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func mapPaymentError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrDebitCodeAlreadyExists):
		return pkg.NewDomainErrorSimple("DEBIT_CODE_ALREADY_EXISTS", err.Error(), http.StatusConflict)
	case errors.Is(err, interfaces.ErrConcurrentUpdate):
		return pkg.NewDomainErrorSimple("CONCURRENT_UPDATE", "Payment was modified concurrently, retry the request", http.StatusConflict)
	case errors.Is(err, validation.ErrInvalidPaymentMethod):
		return pkg.NewDomainErrorSimple("INVALID_PAYMENT_METHOD", err.Error(), http.StatusBadRequest)
	case errors.Is(err, entities.ErrStatusTransition):
		return pkg.NewDomainErrorSimple("INVALID_STATUS_TRANSITION", err.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidDocument),
		errors.Is(err, usecase.ErrInvalidDebitCode),
		errors.Is(err, usecase.ErrInvalidAmount),
		errors.Is(err, usecase.ErrInvalidPaymentID),
		errors.Is(err, usecase.ErrStatusRequired),
		errors.Is(err, usecase.ErrInvalidStatus):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", err.Error(), http.StatusBadRequest)
	default:
		log.Printf("[payment][handler] unexpected error err=%v", err)
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
