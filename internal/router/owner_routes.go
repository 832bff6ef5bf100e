package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gamezone-floor/internal/handler"
	"github.com/iliyamo/gamezone-floor/internal/middleware"
	"github.com/iliyamo/gamezone-floor/internal/model"
)

// RegisterOwner registers OWNER-scoped endpoints under /v1: cost
// bookkeeping, the revenue dashboard and report downloads.
func RegisterOwner(e *echo.Echo, m *handler.ManagementHandler, a *handler.AnalyticsHandler, x *handler.ExportHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner),
	)

	// ---- Subscriptions ----
	g.POST("/subscriptions", m.CreateSubscription)
	g.GET("/subscriptions", m.ListSubscriptions)
	g.DELETE("/subscriptions/:id", m.DeleteSubscription)

	// ---- Salaries ----
	g.POST("/salaries", m.CreateSalary)
	g.GET("/salaries", m.ListSalaries)
	g.DELETE("/salaries/:id", m.DeleteSalary)

	// ---- Analytics ----
	g.GET("/analytics/revenue", a.Revenue)

	// ---- Reports ----
	g.GET("/reports/sessions.xlsx", x.SessionsXLSX)
	g.GET("/reports/sessions.pdf", x.SessionsPDF)
}
