package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"taskmanager/internal/handlers"
	"taskmanager/internal/middleware"
)

// Deps carries what SetupRoutes mounts. Limiter may be nil, which disables
// rate limiting on the auth endpoints.
type Deps struct {
	Auth     *handlers.AuthHandler
	Password *handlers.PasswordHandler
	Tasks    *handlers.TaskHandler
	Export   *handlers.ExportHandler
	Tokens   middleware.TokenParser
	Limiter  middleware.RateLimiter
}

func SetupRoutes(r *gin.Engine, d Deps) *gin.Engine {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.GET("/health", handlers.Health)

	// ---- public
	auth := api.Group("/auth")
	{
		public := auth.Group("")
		if d.Limiter != nil {
			public.Use(middleware.RateLimit(d.Limiter))
		}
		public.POST("/register", d.Auth.Register)
		public.POST("/login", d.Auth.Login)
		public.POST("/forgot-password", d.Password.ForgotPassword)
		public.POST("/reset-password", d.Password.ResetPassword)

		auth.GET("/me", middleware.AuthMiddleware(d.Tokens), d.Auth.Me)
	}

	// ---- protected
	tasks := api.Group("/tasks", middleware.AuthMiddleware(d.Tokens))
	{
		// static paths before /:id
		tasks.GET("/stats/overview", d.Tasks.Stats)
		tasks.GET("/export/pdf", d.Export.TasksPDF)

		tasks.GET("", d.Tasks.List)
		tasks.POST("", d.Tasks.Create)
		tasks.GET("/:id", d.Tasks.GetByID)
		tasks.PUT("/:id", d.Tasks.Update)
		tasks.DELETE("/:id", d.Tasks.Delete)
	}

	return r
}
