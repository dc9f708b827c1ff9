package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	domain "lead-origination/internal/domain/lead"
	leaduc "lead-origination/internal/usecase/lead"
)

type PaymentHandler struct{ uc *leaduc.Usecase }

func NewPaymentHandler(uc *leaduc.Usecase) *PaymentHandler { return &PaymentHandler{uc: uc} }

type createPaymentReq struct {
	FeeType string  `json:"feeType" validate:"required"`
	Amount  float64 `json:"amount"  validate:"gt=0,dec2"`
}

type paymentResultReq struct {
	Status string `json:"status" validate:"required,oneof=Paid Failed"`
}

func (h *PaymentHandler) Create(c echo.Context) error {
	var req createPaymentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.CreatePayment(c.Request().Context(), c.Param("id"), req.FeeType, decimal.NewFromFloat(req.Amount))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) Send(c echo.Context) error {
	p, err := h.uc.MarkPaymentSent(c.Request().Context(), c.Param("id"), c.Param("paymentId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) Result(c echo.Context) error {
	var req paymentResultReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.RecordPaymentResult(c.Request().Context(), c.Param("id"), c.Param("paymentId"), domain.PaymentStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
