// Package router mounts the API handlers on echo.
package router

import (
	"tracker/internal/delivery/api/middleware"
	"tracker/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler      *handler.AuthHandler
	AccountHandler   *handler.AccountHandler
	WorkspaceHandler *handler.WorkspaceHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

type router struct {
	auth           *handler.AuthHandler
	account        *handler.AccountHandler
	workspace      *handler.WorkspaceHandler
	authMiddleware *middleware.AuthMiddleware
}

func NewRouter(params RouterParams) *router {
	return &router{
		auth:           params.AuthHandler,
		account:        params.AccountHandler,
		workspace:      params.WorkspaceHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up every API route.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/avatars/*", r.account.ServeAvatar)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.auth.Register)
		authGroup.POST("/login", r.auth.Login)
		authGroup.POST("/federated", r.auth.FederatedLogin)
		authGroup.POST("/token/verify", r.auth.VerifyToken)
		authGroup.POST("/token/refresh", r.auth.RefreshToken)
		authGroup.POST("/logout", r.auth.Logout)
	}

	required := r.authMiddleware.Authenticate
	optional := r.authMiddleware.OptionalAuthenticate

	apiV1 := e.Group("/api/v1")

	apiV1.DELETE("/account", r.account.DeleteAccount, required)
	profileGroup := apiV1.Group("/profile", required)
	{
		profileGroup.GET("", r.account.GetProfile)
		profileGroup.PATCH("", r.account.UpdateProfile)
		profileGroup.PUT("", r.account.UpdateProfile)
		profileGroup.PUT("/avatar", r.account.UploadAvatar)
	}

	r.workspace.RegisterRoutes(apiV1, optional, required)
}
