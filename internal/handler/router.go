package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vkrastev/clinicore/internal/config"
	"github.com/vkrastev/clinicore/internal/domain"
	"github.com/vkrastev/clinicore/internal/handler/middleware"
	v1 "github.com/vkrastev/clinicore/internal/handler/v1"
	"github.com/vkrastev/clinicore/pkg/auth"
	"github.com/vkrastev/clinicore/pkg/metrics"
)

type Handlers struct {
	Auth      *v1.AuthHandler
	Patient   *v1.PatientHandler
	Doctor    *v1.DoctorHandler
	Diagnosis *v1.DiagnosisHandler
	Visit     *v1.VisitHandler
}

// NewRouter assembles the gin engine: CORS, rate limiting, and metrics
// apply globally; everything under /api/v1 except the login and refresh
// endpoints requires a valid access token.
func NewRouter(
	cfg *config.Config,
	log *zap.Logger,
	jwtManager *auth.JWTManager,
	collector *metrics.Collector,
	h Handlers,
) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(middleware.Metrics(collector))
	r.Use(middleware.RateLimit(cfg.RateLimit))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		MaxAge:           cfg.CORS.MaxAge,
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", h.Auth.Login)
		authRoutes.POST("/refresh", h.Auth.Refresh)
		authRoutes.POST("/change-password", middleware.Authenticate(jwtManager), h.Auth.ChangePassword)
	}

	protected := api.Group("")
	protected.Use(middleware.Authenticate(jwtManager))

	staff := middleware.RequireRole(domain.RoleAdmin, domain.RoleReceptionist, domain.RoleDoctor)
	frontDesk := middleware.RequireRole(domain.RoleAdmin, domain.RoleReceptionist)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	patients := protected.Group("/patients")
	{
		patients.POST("", frontDesk, h.Patient.Create)
		patients.GET("", staff, h.Patient.List)
		patients.GET("/:id", h.Patient.Get)
		patients.PUT("/:id", frontDesk, h.Patient.Update)
		patients.DELETE("/:id", adminOnly, h.Patient.Deactivate)
	}

	doctors := protected.Group("/doctors")
	{
		doctors.POST("", adminOnly, h.Doctor.Create)
		doctors.GET("", h.Doctor.List)
		doctors.GET("/:id", h.Doctor.Get)
		doctors.PUT("/:id", adminOnly, h.Doctor.Update)
	}

	specialties := protected.Group("/specialties")
	{
		specialties.POST("", adminOnly, h.Doctor.CreateSpecialty)
		specialties.GET("", h.Doctor.ListSpecialties)
	}

	diagnoses := protected.Group("/diagnoses")
	{
		diagnoses.POST("", middleware.RequireRole(domain.RoleAdmin, domain.RoleDoctor), h.Diagnosis.Create)
		diagnoses.GET("", h.Diagnosis.List)
		diagnoses.GET("/:id", h.Diagnosis.Get)
	}

	visits := protected.Group("/visits")
	{
		visits.POST("", staff, h.Visit.Create)
		visits.GET("", h.Visit.List)
		visits.GET("/:id", h.Visit.Get)
		visits.PUT("/:id", staff, h.Visit.Update)
		visits.DELETE("/:id", frontDesk, h.Visit.Delete)
	}

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Int("status", c.Writer.Status()),
				zap.String("client_ip", c.ClientIP()),
			)
		}
	}
}
