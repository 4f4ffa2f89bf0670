package controllers

import (
	"github.com/ViBaTo/panel-control-tm/handlers"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler) *AuthController {
	return &AuthController{
		Handler: authHandler,
	}
}

// RegisterRoutes mounts the account routes. apiKey guards the JSON calls the
// dashboard makes; the Google routes are browser navigations and carry no key.
func (ac *AuthController) RegisterRoutes(router *gin.Engine, apiKey, requireSession gin.HandlerFunc) {
	public := router.Group("/", apiKey)
	{
		public.POST("/login", ac.Handler.Login)
		public.POST("/register", ac.Handler.Register)
		public.POST("/forgot-password", ac.Handler.ForgotPassword)
		public.POST("/reset-password", ac.Handler.ResetPassword)
		public.POST("/auth/refresh", ac.Handler.RefreshToken)
	}

	router.GET("/auth/oauth/google", ac.Handler.GoogleLogin)
	router.GET("/auth/callback", ac.Handler.GoogleCallback)

	protected := router.Group("/", requireSession)
	{
		protected.POST("/logout", ac.Handler.Logout)
		protected.GET("/me", ac.Handler.Me)
	}
}
