package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gamezone-floor/internal/handler"
	"github.com/iliyamo/gamezone-floor/internal/middleware"
	"github.com/iliyamo/gamezone-floor/internal/model"
)

// RegisterFloor registers the day-to-day floor endpoints: sessions,
// device availability, bookings and crown battles.  All routes require
// a valid JWT with the EMPLOYEE or OWNER role.  cache, when non-nil,
// wraps read endpoints whose responses tolerate a short TTL.
func RegisterFloor(e *echo.Echo, s *handler.SessionHandler, b *handler.BookingHandler, bt *handler.BattleHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleEmployee, model.RoleOwner),
	)

	// ---- Sessions ----
	g.POST("/sessions", s.Create)
	g.GET("/sessions/active", s.ListActive)
	g.GET("/sessions/:id", s.Get)
	g.POST("/sessions/:id/extend", s.Extend)
	g.POST("/sessions/:id/members", s.AddMember)
	g.POST("/sessions/:id/settle", s.Settle)
	g.POST("/sessions/:id/complete", s.Complete)
	g.DELETE("/sessions/:id", s.Delete)

	// Completed sessions change only when a session finishes, so the
	// listing tolerates the response cache.  The live board and
	// availability never go through it.
	if cache != nil {
		g.GET("/sessions/completed", s.ListCompleted, cache)
	} else {
		g.GET("/sessions/completed", s.ListCompleted)
	}

	// ---- Devices ----
	g.GET("/devices/availability", s.Availability)

	// ---- Bookings ----
	g.POST("/bookings", b.Create)
	g.GET("/bookings", b.List)
	g.GET("/bookings/upcoming", b.ListUpcoming)
	g.GET("/bookings/:id", b.Get)
	g.DELETE("/bookings/:id", b.Delete)

	// ---- Battles ----
	g.POST("/battles", bt.Create)
	g.GET("/battles", bt.List)
	g.GET("/battles/active", bt.ListActive)
	g.GET("/battles/completed", bt.ListCompleted)
	g.POST("/battles/:id/score", bt.Score)
	g.POST("/battles/:id/complete", bt.Complete)
	g.DELETE("/battles/:id", bt.Delete)
}
