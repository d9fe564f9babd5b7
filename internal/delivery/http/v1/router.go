package v1

import (
	"jetsuite-backend/config"
	"jetsuite-backend/internal/delivery/http/middleware"
	"jetsuite-backend/internal/delivery/http/response"
	"jetsuite-backend/internal/domain"
	"jetsuite-backend/pkg/security"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AccessUC     domain.AccessUsecase
	Entitlements domain.EntitlementService
	ProfileUC    domain.ProfileUsecase
	Verifier     middleware.Verifier
	Redis        *goredis.Client // optional; rate limiting falls back to memory
	Audit        security.Recorder
	Health       domain.HealthUsecase
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", healthHandler(deps.Health))

	// Swagger
	if deps.Config.SwaggerEnabled {
		v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public routes
	limiter := middleware.RateLimitMiddleware(middleware.ResolveRateLimitConfig(
		deps.Config.RateLimitResolveThreshold,
		time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
		deps.Redis,
		deps.Audit,
	))
	NewAccessHandler(v1, deps.AccessUC, limiter)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Verifier, deps.Audit))
	{
		NewEntitlementHandler(protected, deps.Entitlements, deps.ProfileUC)
	}

	return r
}

// healthHandler godoc
// @Summary      Health check
// @Description  Report whether the API and its backing services are reachable
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /health [get]
func healthHandler(health domain.HealthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, healthy := health.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "Degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	}
}
