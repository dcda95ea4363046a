package router

// This file registers admin-only routes: ticket revocation and alert
// management. They are separate from the rider routes to keep the role
// surfaces isolated.

import (
	"github.com/labstack/echo/v4"

	"github.com/rts-transit/rapidride/internal/handler"
	"github.com/rts-transit/rapidride/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin. All
// routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, t *handler.TicketHandler, al *handler.AlertHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Tickets ----
	// Revoke a ticket; it fails validation from then on and can never
	// be consumed.
	g.POST("/tickets/:id/revoke", t.Revoke)

	// ---- Alerts ----
	g.POST("/alerts", al.Create)
	g.DELETE("/alerts/:id", al.Delete)
}
