package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	domain "lead-origination/internal/domain/lead"
	"lead-origination/internal/usecase/wizard"
)

type StepHandler struct{ wz *wizard.Sequencer }

func NewStepHandler(wz *wizard.Sequencer) *StepHandler { return &StepHandler{wz: wz} }

type stepResp struct {
	Step  int             `json:"step"`
	Route string          `json:"route"`
	Data  domain.StepData `json:"data"`
}

type canProceedResp struct {
	CanProceed bool         `json:"canProceed"`
	Details    []FieldError `json:"details,omitempty"`
}

func stepParam(c echo.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("step"))
	if err != nil || !domain.ValidStep(n) {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidStep, c.Param("step"))
	}
	return n, nil
}

// bindStep decodes the body into the typed slice of the addressed step.
func bindStep(c echo.Context) (int, domain.StepData, error) {
	n, err := stepParam(c)
	if err != nil {
		return 0, nil, writeError(c, err)
	}
	state, err := domain.NewStepData(n)
	if err != nil {
		return 0, nil, writeError(c, err)
	}
	if err := c.Bind(state); err != nil {
		return 0, nil, badBody(c)
	}
	return n, state, nil
}

func (h *StepHandler) Enter(c echo.Context) error {
	n, err := stepParam(c)
	if err != nil {
		return writeError(c, err)
	}
	id := c.Param("id")
	state, err := h.wz.Enter(c.Request().Context(), id, n)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stepResp{Step: n, Route: wizard.StepRoute(id, n), Data: state})
}

// Validate answers whether the Next control would be enabled for the posted state.
func (h *StepHandler) Validate(c echo.Context) error {
	n, state, err := bindStep(c)
	if state == nil {
		return err
	}
	err = h.wz.CanProceed(c.Request().Context(), c.Param("id"), n, state)
	if ve, ok := wizard.IsValidation(err); ok {
		return c.JSON(http.StatusOK, canProceedResp{Details: ve.Fields})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, canProceedResp{CanProceed: true})
}

func (h *StepHandler) Next(c echo.Context) error {
	n, state, err := bindStep(c)
	if state == nil {
		return err
	}
	t, err := h.wz.Next(c.Request().Context(), c.Param("id"), n, state)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *StepHandler) Exit(c echo.Context) error {
	n, state, err := bindStep(c)
	if state == nil {
		return err
	}
	t, err := h.wz.Exit(c.Request().Context(), c.Param("id"), n, state)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *StepHandler) Previous(c echo.Context) error {
	n, err := stepParam(c)
	if err != nil {
		return writeError(c, err)
	}
	t, err := h.wz.Previous(c.Request().Context(), c.Param("id"), n)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}
