package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/rts-transit/rapidride/internal/handler"    // import the handlers that implement business logic
	"github.com/rts-transit/rapidride/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring probe this endpoint to verify that
	// the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register,
	// login, refresh and logout. Logout authenticates with the refresh
	// token itself, so no JWT is needed.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	// Endpoints that require a valid access token. Both riders and
	// admins may read their own profile.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("RIDER", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints: the fare
// catalog and current service alerts. These routes apply no JWT or role
// middleware so riders can browse before creating an account.
func RegisterPublic(e *echo.Echo, p *handler.ProductHandler, al *handler.AlertHandler) {
	// Fare catalog with prices and external checkout links.
	e.GET("/v1/products", p.List)
	e.GET("/v1/products/:name", p.Get)
	// Service alerts posted by administrators.
	e.GET("/v1/alerts", al.List)
}
