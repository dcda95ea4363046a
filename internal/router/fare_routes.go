package router

// This file registers the fare engine routes: rider-facing issuance and
// ticket listing, and the gate-facing validate/consume endpoints. Gate
// endpoints are unauthenticated (fare-gate devices hold no rider
// session) but sit behind the distributed rate limiter so a
// misbehaving device cannot hammer the validation pipeline.

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rts-transit/rapidride/internal/config"
	"github.com/rts-transit/rapidride/internal/handler"
	"github.com/rts-transit/rapidride/internal/middleware"
)

// RegisterFare registers rider ticket endpoints under /v1 with JWT +
// RIDER role, and the gate endpoints under /v1/gate with rate limiting.
func RegisterFare(e *echo.Echo, t *handler.TicketHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	rider := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("RIDER", "ADMIN"),
	)
	// Issue a signed ticket for the authenticated rider. Fails with 400
	// on unknown fare class or malformed valid_for month.
	rider.POST("/tickets", t.Issue)
	// List the rider's own tickets, newest first.
	rider.GET("/tickets", t.ListMine)

	gate := e.Group("/v1/tickets", middleware.NewTokenBucket(rl, rdb))
	// Validate a scanned QR payload. Always 200 with a verdict body;
	// invalid tickets carry a stable reason code.
	gate.POST("/validate", t.Validate)
	// Spend a per-ride ticket. Exactly one concurrent consume per
	// ticket ever reports "consumed".
	gate.POST("/consume", t.Consume)
}
