package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"onecore/internal/config"
	"onecore/internal/domain"
	"onecore/internal/handler"
	"onecore/internal/metrics"
	"onecore/internal/middleware"
	"onecore/internal/service"

	_ "onecore/docs"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	File     *handler.FileHandler
	Document *handler.DocumentHandler
	Event    *handler.EventHandler
	Health   *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware. m may be
// nil, in which case no metrics are collected or exposed.
func Setup(
	authSvc service.AuthService,
	h Handlers,
	m *metrics.Metrics,
	corsCfg config.CORSConfig,
	rateCfg config.RateLimitConfig,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger("/healthz", "/readyz", "/metrics"))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(corsCfg.AllowedOrigins))
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/register", h.Auth.Register)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.GET("/auth/me", h.Auth.Me)

	uploadLimit := middleware.RateLimit(rateCfg.UploadRPS, rateCfg.UploadBurst)
	uploader := middleware.RequireRole(domain.RoleUploader)

	// CSV files
	files := protected.Group("/files")
	files.POST("/upload", uploader, uploadLimit, h.File.Upload)
	files.GET("", h.File.List)
	files.GET("/:id", h.File.GetByID)
	files.GET("/:id/validations", h.File.Validations)
	files.GET("/:id/rows", h.File.Rows)

	// Documents
	docs := protected.Group("/documents")
	docs.POST("/upload", uploader, uploadLimit, h.Document.Upload)
	docs.GET("", h.Document.List)
	docs.GET("/:id", h.Document.GetByID)
	docs.DELETE("/:id", uploader, h.Document.Delete)
	docs.POST("/:id/reanalyze", uploader, h.Document.Reanalyze)
	docs.GET("/:id/download", h.Document.Download)

	// Event log
	events := protected.Group("/events")
	events.GET("", h.Event.List)
	events.GET("/types", h.Event.Types)
	events.GET("/stats", h.Event.Stats)
	events.GET("/export", middleware.RequireRole(domain.RoleAdmin), h.Event.Export)
	events.GET("/:id", h.Event.GetByID)

	return r
}
