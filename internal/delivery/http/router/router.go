// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"atelier/config"
	"atelier/internal/delivery/http/middleware"
	"atelier/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Config      *config.Config
	AuthHandler *handler.AuthHandler
	ServiceAuth *middleware.ServiceAuthMiddleware
	RequestID   *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	cfg         *config.Config
	authHandler *handler.AuthHandler
	serviceAuth *middleware.ServiceAuthMiddleware
	requestID   *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		cfg:         params.Config,
		authHandler: params.AuthHandler,
		serviceAuth: params.ServiceAuth,
		requestID:   params.RequestID,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestID.Process)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Public token handshake surface
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/signin", r.authHandler.SignIn)
		authGroup.POST("/verify", r.authHandler.Verify)
	}

	// Internal surface for schedulers and test harnesses
	internalGroup := e.Group("/internal")
	internalGroup.Use(r.serviceAuth.Authenticate)
	{
		internalGroup.POST("/cleanup", r.authHandler.Cleanup)

		if r.cfg.TokensExposed() {
			internalGroup.GET("/requests/:token", r.authHandler.Inspect)
		}
	}
}
