package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"field-service-server/config"
	"field-service-server/middleware"
	"field-service-server/models"
	"field-service-server/services"
)

// Deps carries the shared dependencies the HTTP layer is built from.
// Limiter and Uploads may be nil: a nil limiter disables rate limiting
// (used by tests), a nil upload service disables photo storage.
type Deps struct {
	Cfg     *config.Config
	DB      *gorm.DB
	Limiter *middleware.RateLimiter
	Uploads *services.UploadService
}

// NewRouter assembles the middleware stack, services, and the full API
// surface. Everything is constructed here and passed down; no package
// holds global state.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.InputValidationMiddleware())
	if deps.Limiter != nil {
		router.Use(middleware.RateLimitMiddleware(deps.Limiter))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Field Service Server is running",
			"time":    time.Now().UTC(),
		})
	})

	dev := deps.Cfg.IsDevelopment()
	if deps.Uploads == nil {
		deps.Uploads, _ = services.NewUploadService(config.CloudinaryConfig{})
	}

	tokens := services.NewTokenService(deps.Cfg.JWT)
	accounts := services.NewAccountService(deps.DB)
	requests := services.NewRequestService(deps.DB)
	assignments := services.NewAssignmentService(deps.DB)
	ratings := services.NewRatingService(deps.DB)

	auth := middleware.NewAuthenticator(deps.DB, tokens)

	authH := NewAuthHandler(accounts, tokens, dev)
	usersH := NewUserHandler(accounts, dev)
	workersH := NewFieldWorkerHandler(accounts, dev)
	requestsH := NewRequestHandler(requests, dev)
	tasksH := NewTaskHandler(assignments, ratings, deps.Uploads, dev)
	dashboardH := NewDashboardHandler(deps.DB, dev)

	api := router.Group("/api/v1")
	{
		// Credential endpoints carry a stricter rate limit.
		authGroup := api.Group("/auth")
		if deps.Limiter != nil {
			authGroup.Use(middleware.AuthRateLimitMiddleware(deps.Limiter))
		}
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)

		session := api.Group("/auth")
		session.Use(auth.RequireAuth())
		{
			session.GET("/me", authH.Me)
			session.POST("/logout", authH.Logout)
			session.POST("/change-password", authH.ChangePassword)
		}

		protected := api.Group("")
		protected.Use(auth.RequireAuth())
		{
			protected.GET("/users", auth.RequireRole(models.RoleAdmin), usersH.List)
			protected.PUT("/users/me", usersH.UpdateMe)
			protected.GET("/users/:id", usersH.Get)
			protected.PATCH("/users/:id/status", auth.RequireRole(models.RoleAdmin), usersH.SetStatus)

			protected.GET("/field-workers", workersH.List)
			protected.GET("/field-workers/:id", workersH.Get)
			protected.PUT("/field-workers/:id/approve", auth.RequireRole(models.RoleAdmin), workersH.Approve)
			protected.PUT("/field-workers/:id/reject", auth.RequireRole(models.RoleAdmin), workersH.Reject)

			requestsGroup := protected.Group("/service-requests")
			{
				requestsGroup.POST("", auth.RequireRole(models.RoleCustomer), requestsH.Create)
				requestsGroup.GET("", requestsH.List)
				requestsGroup.GET("/:id", requestsH.Get)
				requestsGroup.PUT("/:id", auth.RequireRole(models.RoleCustomer), requestsH.Update)
				requestsGroup.POST("/:id/cancel", auth.RequireRole(models.RoleCustomer, models.RoleAdmin), requestsH.Cancel)
			}

			tasksGroup := protected.Group("/tasks")
			{
				tasksGroup.POST("/assign", auth.RequireRole(models.RoleAdmin), tasksH.Assign)
				tasksGroup.GET("", tasksH.List)
				tasksGroup.GET("/ratable", auth.RequireRole(models.RoleCustomer), tasksH.ListRatable)
				tasksGroup.GET("/:id", tasksH.Get)
				tasksGroup.PUT("/:id/status", auth.RequireRole(models.RoleFieldWorker, models.RoleAdmin), tasksH.UpdateStatus)
				tasksGroup.POST("/:id/rate", auth.RequireRole(models.RoleCustomer), tasksH.Rate)
				tasksGroup.POST("/:id/photos", auth.RequireRole(models.RoleFieldWorker, models.RoleAdmin), tasksH.UploadPhoto)
			}

			protected.GET("/dashboard/stats", dashboardH.Stats)
		}
	}

	return router
}
