package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gamezone-floor/internal/export"
	"github.com/iliyamo/gamezone-floor/internal/ledger"
	"github.com/iliyamo/gamezone-floor/internal/observability"
)

// ExportHandler streams completed-session reports as file downloads.
type ExportHandler struct {
	Ledger *ledger.Service
}

func NewExportHandler(l *ledger.Service) *ExportHandler {
	return &ExportHandler{Ledger: l}
}

// SessionsXLSX downloads the completed-sessions workbook.
func (h *ExportHandler) SessionsXLSX(c echo.Context) error {
	sessions, err := h.Ledger.ListCompleted(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}

	started := time.Now()
	data, err := export.BuildSessionsXLSX(sessions, time.Now().UTC())
	observability.ObserveExport("xlsx", err, time.Since(started))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=sessions-%s.xlsx", time.Now().UTC().Format("2006-01-02")))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// SessionsPDF downloads the completed-sessions report as a PDF.
func (h *ExportHandler) SessionsPDF(c echo.Context) error {
	sessions, err := h.Ledger.ListCompleted(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}

	started := time.Now()
	data, err := export.BuildSessionsPDF(sessions, time.Now().UTC())
	observability.ObserveExport("pdf", err, time.Since(started))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=sessions-%s.pdf", time.Now().UTC().Format("2006-01-02")))
	return c.Blob(http.StatusOK, "application/pdf", data)
}
