package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	domain "lead-origination/internal/domain/lead"
	leaduc "lead-origination/internal/usecase/lead"
	"lead-origination/internal/usecase/wizard"
)

type LeadHandler struct {
	uc     *leaduc.Usecase
	wizard *wizard.Sequencer
}

func NewLeadHandler(uc *leaduc.Usecase, wz *wizard.Sequencer) *LeadHandler {
	return &LeadHandler{uc: uc, wizard: wz}
}

type listResp struct {
	Leads []domain.Lead `json:"leads"`
	Total int           `json:"total"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,leadstatus"`
}

// parseFilter reads q, status, from and to. A bare date in "to" covers the
// whole day.
func parseFilter(c echo.Context) (domain.Filter, error) {
	f := domain.Filter{
		Query:  c.QueryParam("q"),
		Status: c.QueryParam("status"),
	}
	if f.Status != "" && f.Status != domain.StatusAll && !domain.Status(f.Status).Valid() {
		return f, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, f.Status)
	}
	if raw := c.QueryParam("from"); raw != "" {
		t, _, err := parseBound(raw)
		if err != nil {
			return f, err
		}
		f.From = &t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, dateOnly, err := parseBound(raw)
		if err != nil {
			return f, err
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &t
	}
	return f, nil
}

func parseBound(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(domain.DateLayout, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q", raw)
	}
	return t, false, nil
}

func (h *LeadHandler) List(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	leads, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, listResp{Leads: leads, Total: len(leads)})
}

func (h *LeadHandler) Export(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	leads, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="leads.csv"`)
	res.WriteHeader(http.StatusOK)
	return leaduc.ExportCSV(res, leads)
}

func (h *LeadHandler) Stats(c echo.Context) error {
	counts, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}

// Create opens a new Draft and sends the client to step 1.
func (h *LeadHandler) Create(c echo.Context) error {
	l, err := h.uc.Create(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, wizard.Transition{
		Lead:     l,
		NextStep: domain.FirstStep,
		Route:    wizard.StepRoute(l.ID, domain.FirstStep),
	})
}

func (h *LeadHandler) Get(c echo.Context) error {
	l, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LeadHandler) Patch(c echo.Context) error {
	var p leaduc.Patch
	if err := c.Bind(&p); err != nil {
		return badBody(c)
	}
	id := c.Param("id")
	if p.CustomerMobile != nil {
		if err := h.wizard.MobileEditable(id, *p.CustomerMobile); err != nil {
			return writeError(c, err)
		}
	}
	l, err := h.uc.Update(c.Request().Context(), id, p)
	if err == nil && l != nil && p.CustomerMobile != nil {
		h.wizard.AdoptMobile(id, l.CustomerMobile)
	}
	return h.respond(c, l, err)
}

func (h *LeadHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l, err := h.uc.Submit(ctx, c.Param("id"))
	if err == nil && l != nil {
		h.wizard.Discard(l.ID)
	}
	return h.respond(c, l, err)
}

func (h *LeadHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	l, err := h.uc.UpdateStatus(c.Request().Context(), c.Param("id"), domain.Status(req.Status))
	return h.respond(c, l, err)
}

func (h *LeadHandler) Resume(c echo.Context) error {
	t, err := h.wizard.Resume(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// respond turns the store's silent no-op on an unknown id into a 404.
func (h *LeadHandler) respond(c echo.Context, l *domain.Lead, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	if l == nil {
		return writeError(c, domain.ErrNotFound)
	}
	return c.JSON(http.StatusOK, l)
}
