package v1

import (
	"net/http"
	"time"

	"tarabaho-web/config"
	"tarabaho-web/internal/delivery/http/middleware"
	"tarabaho-web/internal/delivery/http/response"
	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC         domain.AuthUsecase
	RegistrationUC domain.RegistrationUsecase
	PortfolioUC    domain.PortfolioUsecase
	BrowseUC       domain.BrowseUsecase
	HealthUC       domain.HealthUsecase
	SessionStore   domain.SessionStore
	Config         *config.Config
	// LoginTracker blocks accounts after repeated rejected logins; nil disables it.
	LoginTracker *security.LoginTracker
	// EnableRecover exposes POST /auth/recover. Leave it off when one API
	// client is shared by many browsers.
	EnableRecover bool
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		if status["status"] != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	app := v1.Group("")
	app.Use(middleware.GlobalRateLimitMiddleware())
	app.Use(middleware.CSRFMiddleware(deps.Config.CookieSecure))
	app.Use(middleware.SessionMiddleware(middleware.SessionConfig{
		Store:  deps.SessionStore,
		TTL:    deps.Config.SessionTTL,
		Secure: deps.Config.CookieSecure,
	}))

	// Credential endpoints get the login limiter on top.
	limited := app.Group("")
	limited.Use(middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(
		deps.Config.RateLimitLoginThreshold,
		time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
	)))

	uploads := app.Group("")
	uploads.Use(middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig()))

	{
		NewAuthHandler(app, limited, deps.AuthUC, deps.LoginTracker, deps.EnableRecover)
		NewRegistrationHandler(limited, deps.RegistrationUC)
		NewPortfolioHandler(app, uploads, deps.PortfolioUC, deps.BrowseUC)
		NewBrowseHandler(app, deps.BrowseUC)
	}

	return r
}
