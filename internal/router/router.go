// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/moviecircle/backend/internal/handler"
	"github.com/moviecircle/backend/internal/middleware"
	"github.com/moviecircle/backend/internal/session"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the auth endpoints.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler) {
	e.GET("/healthz", handler.Health)
	e.POST("/v1/auth/register", a.Register)
	e.POST("/v1/auth/login", a.Login)
}

// RegisterAPI registers the gated API surface. Every mutating endpoint
// passes the session gate with its own action name, mirroring the
// per-entry-point session check the clients expect.
func RegisterAPI(e *echo.Echo, v *session.Validator,
	shows *handler.ShowHandler, list *handler.ListHandler,
	reactions *handler.ReactionHandler, notifications *handler.NotificationHandler,
	catalogue *handler.CatalogueHandler) {

	g := e.Group("/v1")
	g.POST("/shows", shows.SaveShow, middleware.SessionGate(v, "saveshow"))
	g.POST("/shows/list", list.ListShows, middleware.SessionGate(v, "gettvshows"))
	g.POST("/shows/delete", shows.DeleteShow, middleware.SessionGate(v, "deleteshow"))
	g.POST("/votes/reaction", reactions.SetReaction, middleware.SessionGate(v, "setreaction"))
	g.GET("/notifications", notifications.ListRecent, middleware.SessionGate(v, "getnotifications"))

	// Static reference data needs no session.
	g.GET("/catalogue/:category", catalogue.ListByCategory)
}
