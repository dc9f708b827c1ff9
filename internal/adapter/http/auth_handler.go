package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"lead-origination/internal/adapter/middleware"
	"lead-origination/internal/domain/auth"
	authuc "lead-origination/internal/usecase/auth"
)

// VerifyOTPRoute is where the client goes after a good password.
const VerifyOTPRoute = "/auth/verify-otp"

type AuthHandler struct {
	uc     *authuc.Usecase
	tokens *middleware.TokenManager
}

func NewAuthHandler(uc *authuc.Usecase, tokens *middleware.TokenManager) *AuthHandler {
	return &AuthHandler{uc: uc, tokens: tokens}
}

type loginReq struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResp struct {
	Pending auth.PendingLogin `json:"pending"`
	Next    string            `json:"next"`
}

type verifyOTPReq struct {
	OTP string `json:"otp"`
}

type signInResp struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Session   auth.Session `json:"session"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loginResp{Pending: *p, Next: VerifyOTPRoute})
}

func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	// a malformed code is a wrong code; it must not reveal more than that
	s, err := h.uc.VerifyOTPAndSignIn(c.Request().Context(), req.OTP)
	if err != nil {
		return writeError(c, err)
	}
	token, exp, err := h.tokens.Issue(s.User)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, signInResp{Token: token, ExpiresAt: exp, Session: *s})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.uc.Logout(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	s, err := h.uc.CurrentUser(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
