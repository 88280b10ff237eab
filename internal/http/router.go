// Package httpapi wires the Gin transport to the lead services, middleware
// and handlers.
//
// Middleware runs in this order on every request:
//  1. OpenTelemetry server span
//  2. RequestID
//  3. RedactingLogger
//  4. Recovery
//  5. Body size cap
//  6. Prometheus HTTP metrics
//  7. CORS
//  8. Security headers
//
// Route groups add gzip, bearer authentication and per-key rate limits on top.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/docs"
	"github.com/tbourn/go-lead-backend/internal/config"
	"github.com/tbourn/go-lead-backend/internal/domain"
	"github.com/tbourn/go-lead-backend/internal/http/handlers"
	"github.com/tbourn/go-lead-backend/internal/http/middleware"
	"github.com/tbourn/go-lead-backend/internal/repo"
	"github.com/tbourn/go-lead-backend/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// leadRepoShim adapts the repo free functions to services.LeadRepo.
type leadRepoShim struct{}

func (leadRepoShim) ListLeadsPage(ctx context.Context, db *gorm.DB, f repo.LeadFilter, offset, limit int) ([]domain.Lead, error) {
	return repo.ListLeadsPage(ctx, db, f, offset, limit)
}

func (leadRepoShim) CountLeads(ctx context.Context, db *gorm.DB, f repo.LeadFilter) (int64, error) {
	return repo.CountLeads(ctx, db, f)
}

func (leadRepoShim) LeadsStats(ctx context.Context, db *gorm.DB, f repo.LeadFilter) (int64, *time.Time, error) {
	return repo.LeadsStats(ctx, db, f)
}

func (leadRepoShim) GetLead(ctx context.Context, db *gorm.DB, id string) (*domain.Lead, error) {
	return repo.GetLead(ctx, db, id)
}

func (leadRepoShim) UpdateLead(ctx context.Context, db *gorm.DB, id string, fields map[string]any, tags []string) error {
	return repo.UpdateLead(ctx, db, id, fields, tags)
}

func (leadRepoShim) CreateLead(ctx context.Context, db *gorm.DB, l *domain.Lead) error {
	return repo.CreateLead(ctx, db, l)
}

func (leadRepoShim) LeadExistsByPhone(ctx context.Context, db *gorm.DB, phone string) (bool, error) {
	return repo.LeadExistsByPhone(ctx, db, phone)
}

func (leadRepoShim) GetUserByID(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUserByID(ctx, db, id)
}

// userRepoShim adapts the repo free functions to services.UserRepo.
type userRepoShim struct{}

func (userRepoShim) CreateUser(ctx context.Context, db *gorm.DB, name, email, passwordHash string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, name, email, passwordHash)
}

func (userRepoShim) GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return repo.GetUserByEmail(ctx, db, email)
}

func (userRepoShim) GetUserByID(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUserByID(ctx, db, id)
}

// Deps are the collaborators RegisterRoutes cannot build from config alone.
type Deps struct {
	DB      *gorm.DB
	Webhook handlers.WebhookProcessor

	// Registry receives the HTTP metrics and backs /metrics. Nil selects the
	// Prometheus default registry.
	Registry *prometheus.Registry
}

// RegisterRoutes attaches middleware and every endpoint to r.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		reg, gatherer = deps.Registry, deps.Registry
	}
	r.Use(middleware.NewHTTPMetrics(reg).Handler())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{Registry: reg})))

	r.Use(corsMiddleware(cfg.CORS))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	leadSvc := services.NewLeadService(deps.DB, leadRepoShim{}, cfg.DefaultLeadSource, cfg.DefaultBusinessPhone)
	authSvc := services.NewAuthService(deps.DB, userRepoShim{}, cfg.Auth)
	h := handlers.New(deps.Webhook, leadSvc, authSvc, cfg.WhatsApp.VerifyToken)

	requireUser := middleware.BearerAuth(authSvc, middleware.ErrIs(services.ErrInvalidToken, services.ErrAuthDisabled))

	api := groupWithPrefix(r, cfg.APIBasePath)

	// WhatsApp calls these; responses are plain text and never compressed.
	if deps.Webhook != nil {
		api.GET("/webhook", h.VerifyWebhook)
		api.POST("/webhook", h.ReceiveWebhook)
	}

	pub := api.Group("")
	pub.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		auth := pub.Group("/auth")
		auth.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP()).Handler())
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/user", requireUser, h.CurrentUser)

		// Manual lead capture from the website form is public.
		pub.POST("/leads", h.CreateLead)

		leads := pub.Group("/leads")
		leads.Use(requireUser)
		leads.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).Handler())
		leads.GET("", h.ListLeads)
		leads.GET("/:id", h.GetLead)
		leads.PUT("/:id", h.UpdateLead)
	}
}

// corsMiddleware allows every origin when none are configured and echoes
// allowlisted origins otherwise.
func corsMiddleware(cc config.CORSConfig) gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"X-Request-ID", "ETag", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cc.AllowedOrigins) == 0 {
		base.AllowAllOrigins = true
		return cors.New(base)
	}
	base.AllowOrigins = cc.AllowedOrigins
	return cors.New(base)
}

// limitBody caps the request body at maxBytes; reads past the cap fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
