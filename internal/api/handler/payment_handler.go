package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry intent creation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

type PaymentHandler struct {
	payments ports.PaymentService
}

func NewPaymentHandler(payments ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreateIntent asks the processor for a payment intent.
//
// @Summary      Create payment intent
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                false  "Replay key"
// @Param        body             body      paymentIntentRequest  true   "Price in major units"
// @Success      200              {object}  clientSecretResponse
// @Failure      400              {object}  ErrorResponse
// @Failure      409              {object}  ErrorResponse
// @Failure      500              {object}  ErrorResponse
// @Failure      503              {object}  ErrorResponse
// @Router       /create-payment-intent [post]
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req paymentIntentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	secret, err := h.payments.CreateIntent(c.Request().Context(), ports.CreateIntentInput{
		Price:          req.Price,
		Currency:       req.Currency,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientSecretResponse{ClientSecret: secret})
}

// RecordPayment appends a completed payment.
//
// @Summary      Record payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      paymentRequest  true  "Payment"
// @Success      200   {object}  insertedResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /payments [post]
func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	id, err := h.payments.RecordPayment(c.Request().Context(), &domain.PaymentRecord{
		Email:         req.Email,
		TransactionID: req.TransactionID,
		Amount:        req.Price,
		Currency:      req.Currency,
		Metadata:      req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, insertedResponse{InsertedID: id})
}
