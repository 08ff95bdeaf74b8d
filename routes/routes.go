package routes

import (
	"time"

	"pingly-server/handlers"
	"pingly-server/internal/cache"
	"pingly-server/internal/middleware"
	"pingly-server/internal/services"
	"pingly-server/internal/socket"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	AuthService         *services.AuthService
	UserService         *services.UserService
	ConversationService *services.ConversationService
	MessageService      *services.MessageService
	TokenService        *services.TokenService
	Cache               cache.Cache
	Gateway             *socket.Gateway
}

func SetupRoutes(deps Dependencies) *gin.Engine {
	r := gin.Default()

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	userHandler := handlers.NewUserHandler(deps.UserService)
	conversationHandler := handlers.NewConversationHandler(deps.ConversationService, deps.MessageService)

	requireAuth := middleware.Auth(deps.TokenService)
	loginLimiter := middleware.RateLimit(deps.Cache, "login", 5, time.Minute)
	otpLimiter := middleware.RateLimit(deps.Cache, "otp", 30, 15*time.Minute)

	// Public routes (no login needed)
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", otpLimiter, authHandler.Register)
		auth.POST("/verify-otp", otpLimiter, authHandler.VerifyOTP)
		auth.POST("/login", loginLimiter, authHandler.Login)
		auth.POST("/refresh-token", authHandler.RefreshToken)
		auth.POST("/forgot-password", otpLimiter, authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// Protected routes (need login)
	authed := r.Group("/api/auth", requireAuth)
	{
		authed.POST("/logout", authHandler.Logout)
		authed.GET("/me", authHandler.Me)
		authed.PUT("/profile", authHandler.UpdateProfile)
	}

	users := r.Group("/api/users", requireAuth)
	{
		users.GET("", userHandler.GetUsers)
		users.GET("/:id", userHandler.GetUserByID)
	}

	conversations := r.Group("/api/conversations", requireAuth)
	{
		conversations.POST("", conversationHandler.Create)
		conversations.GET("", conversationHandler.List)
		conversations.GET("/:id", conversationHandler.GetByID)
		conversations.GET("/:id/messages", conversationHandler.ListMessages)
		conversations.POST("/:id/messages", conversationHandler.SendMessage)
		conversations.PATCH("/:id/messages/:messageId", conversationHandler.EditMessage)
		conversations.DELETE("/:id/messages/:messageId", conversationHandler.DeleteMessage)
		conversations.POST("/:id/read", conversationHandler.MarkRead)
	}

	r.Any("/socket.io/*any", deps.Gateway.ServeHTTP)

	return r
}
