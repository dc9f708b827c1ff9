package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lead-origination/internal/usecase/wizard"
)

// MobileHandler drives the step 2 OTP sub-flow.
type MobileHandler struct{ wz *wizard.Sequencer }

func NewMobileHandler(wz *wizard.Sequencer) *MobileHandler { return &MobileHandler{wz: wz} }

type sendOTPReq struct {
	CountryCode string `json:"countryCode"`
	Mobile      string `json:"mobile" validate:"required"`
}

type verifyMobileReq struct {
	OTP string `json:"otp"`
}

type mobileErrResp struct {
	Error  string             `json:"error"`
	Mobile wizard.MobileState `json:"mobile"`
}

func (h *MobileHandler) State(c echo.Context) error {
	st, err := h.wz.Mobile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *MobileHandler) Send(c echo.Context) error {
	var req sendOTPReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	st, err := h.wz.SendOTP(c.Request().Context(), c.Param("id"), req.CountryCode, req.Mobile)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Verify reports a wrong code together with the state, so the client can
// clear the entry and keep the number locked.
func (h *MobileHandler) Verify(c echo.Context) error {
	var req verifyMobileReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	st, err := h.wz.VerifyOTP(c.Request().Context(), c.Param("id"), req.OTP)
	if errors.Is(err, wizard.ErrInvalidOTP) {
		return c.JSON(http.StatusUnprocessableEntity, mobileErrResp{Error: err.Error(), Mobile: st})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *MobileHandler) Reset(c echo.Context) error {
	st, err := h.wz.ResetMobile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
