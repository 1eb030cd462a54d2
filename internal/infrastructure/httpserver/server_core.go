package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/ports"
	customMiddleware "github.com/gatewarden/gatewarden/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
}

type ServerDeps struct {
	DecisionEngine ports.DecisionEngine
	RateLimiter    ports.RateLimiter
	ListAdmin      ports.ListAdminService
	Reports        ports.ReportService
	HealthCheckers []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	engine         ports.DecisionEngine
	limiter        ports.RateLimiter
	listAdmin      ports.ListAdminService
	reports        ports.ReportService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, jwtSecret string, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		engine:         deps.DecisionEngine,
		limiter:        deps.RateLimiter,
		listAdmin:      deps.ListAdmin,
		reports:        deps.Reports,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.DecisionEngine,
			logger,
			jwtSecret,
			GetRequestsTotal(),
			GetRequestDuration(),
			GetDecisionsTotal(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
