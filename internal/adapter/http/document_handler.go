package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domain "lead-origination/internal/domain/lead"
	"lead-origination/internal/usecase/wizard"
)

type DocumentHandler struct{ wz *wizard.Sequencer }

func NewDocumentHandler(wz *wizard.Sequencer) *DocumentHandler { return &DocumentHandler{wz: wz} }

type uploadReq struct {
	Type     string `json:"type"     validate:"required,doctype"`
	FileName string `json:"fileName" validate:"required"`
}

type captureReq struct {
	Type string `json:"type" validate:"required,doctype"`
}

type uploadsResp struct {
	Uploads []domain.Upload       `json:"uploads"`
	Missing []domain.DocumentType `json:"missing"`
}

func (h *DocumentHandler) List(c echo.Context) error {
	n, err := stepParam(c)
	if err != nil {
		return writeError(c, err)
	}
	ups, err := h.wz.Uploads(c.Request().Context(), c.Param("id"), n)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, uploadsResp{Uploads: ups, Missing: domain.MissingDocuments(ups)})
}

// Add starts a file upload. The returned upload is Processing; poll List for the outcome.
func (h *DocumentHandler) Add(c echo.Context) error {
	n, err := stepParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var req uploadReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	up, err := h.wz.AddUpload(c.Request().Context(), c.Param("id"), n, domain.DocumentType(req.Type), req.FileName)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, up)
}

func (h *DocumentHandler) Capture(c echo.Context) error {
	n, err := stepParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var req captureReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	up, err := h.wz.Capture(c.Request().Context(), c.Param("id"), n, domain.DocumentType(req.Type))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, up)
}

func (h *DocumentHandler) Retry(c echo.Context) error {
	n, err := stepParam(c)
	if err != nil {
		return writeError(c, err)
	}
	up, err := h.wz.RetryUpload(c.Request().Context(), c.Param("id"), n, c.Param("docId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, up)
}

func (h *DocumentHandler) Delete(c echo.Context) error {
	n, err := stepParam(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.wz.DeleteUpload(c.Request().Context(), c.Param("id"), n, c.Param("docId")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
