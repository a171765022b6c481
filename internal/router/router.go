package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizora/testroom-backend/internal/config"
	"github.com/quizora/testroom-backend/internal/handler"
	"github.com/quizora/testroom-backend/internal/middleware"
	"github.com/quizora/testroom-backend/internal/response"
	"github.com/quizora/testroom-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Test        *handler.TestHandler
	Room        *handler.RoomHandler
	StudentRoom *handler.StudentRoomHandler
	Admin       *handler.AdminHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the unauthenticated auth routes (30 requests per
	// minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/signup", authLimiter.Middleware(), handlers.Auth.Signup)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/room-login", authLimiter.Middleware(), handlers.Auth.RoomLogin)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (JWT + Active Session) ───────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckActiveSession(authService),
	)
	{
		studentAPI.GET("/rooms/:id", handlers.StudentRoom.Info)
		studentAPI.POST("/rooms/:id/join", handlers.StudentRoom.Join)
		studentAPI.GET("/rooms/:id/questions", handlers.StudentRoom.Paper)
		studentAPI.POST("/rooms/:id/answers", handlers.StudentRoom.Submit)
		studentAPI.GET("/rooms/:id/result", handlers.StudentRoom.Result)
	}

	// ─── 3. Teacher Group (JWT) ────────────────────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.GET("/tests", handlers.Test.List)
		teacherAPI.POST("/tests", handlers.Test.Create)
		teacherAPI.GET("/tests/:id", handlers.Test.Get)
		teacherAPI.DELETE("/tests/:id", handlers.Test.Delete)

		teacherAPI.GET("/rooms", handlers.Room.List)
		teacherAPI.POST("/rooms", handlers.Room.Create)
		teacherAPI.GET("/rooms/:id", handlers.Room.Get)
		teacherAPI.POST("/rooms/:id/close", handlers.Room.Close)
		teacherAPI.GET("/rooms/:id/results", handlers.Room.Results)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/teachers", handlers.Admin.ListTeachers)
		adminAPI.POST("/teachers", handlers.Admin.CreateTeacher)
		adminAPI.DELETE("/teachers/:id", handlers.Admin.DeleteTeacher)
	}

	return router
}
